package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoManifest indicates that no Flatpak manifest was found during discovery.
var ErrNoManifest = errors.New("no flatpak manifest discovered")

// Directories searched for manifests, relative to the repository root.
var searchDirs = []string{".", "build-aux", "flatpak"}

// Discover returns the manifest path. An explicit path is validated and
// returned as given. Otherwise the repository root and conventional
// subdirectories are globbed for reverse-DNS named manifest files; exactly
// one candidate is expected.
func Discover(root, explicit string) (string, error) {
	if explicit != "" {
		return resolveExplicit(root, explicit)
	}

	matches := make(map[string]struct{})
	for _, dir := range searchDirs {
		for _, ext := range []string{"*.yml", "*.yaml", "*.json"} {
			pattern := filepath.Join(root, dir, ext)
			found, err := filepath.Glob(pattern)
			if err != nil {
				return "", fmt.Errorf("glob %q: %w", pattern, err)
			}
			for _, m := range found {
				if looksLikeAppID(m) {
					matches[m] = struct{}{}
				}
			}
		}
	}

	if len(matches) == 0 {
		return "", ErrNoManifest
	}

	paths := make([]string, 0, len(matches))
	for p := range matches {
		paths = append(paths, Rel(root, p))
	}
	sort.Strings(paths)

	if len(paths) > 1 {
		return "", fmt.Errorf("multiple manifest candidates: %s; specify --manifest", strings.Join(paths, ", "))
	}
	return paths[0], nil
}

func resolveExplicit(root, input string) (string, error) {
	cleaned := input
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(root, cleaned)
	}
	info, err := os.Stat(cleaned)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("manifest %q not found", input)
		}
		return "", fmt.Errorf("stat %q: %w", input, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("manifest %q is a directory", input)
	}
	return Rel(root, cleaned), nil
}

// looksLikeAppID reports whether the file stem resembles a reverse-DNS
// application id such as io.github.thinkle.Gourmand.
func looksLikeAppID(path string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	segments := strings.Split(stem, ".")
	if len(segments) < 3 {
		return false
	}
	for _, s := range segments {
		if s == "" {
			return false
		}
	}
	return true
}
