// Package publish stores finished bundles where they can be retrieved:
// a local artifacts directory, an S3 bucket, or both.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrNoArtifacts indicates the glob matched no usable files.
var ErrNoArtifacts = errors.New("no artifacts matched")

// Artifact is one file selected for publishing.
type Artifact struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Publisher stores artifacts under a shared artifact name and returns the
// destinations written.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, artifactName string, artifacts []Artifact) ([]string, error)
}

// Glob returns the non-empty files under dir matching pattern, sorted by
// path. Zero matches or an empty match is an error: an empty bundle means
// the build produced garbage and must not be published.
func Glob(dir, pattern string) ([]Artifact, error) {
	full := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", full, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifacts, full)
	}
	sort.Strings(matches)

	artifacts := make([]Artifact, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat artifact %q: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		if info.Size() == 0 {
			return nil, fmt.Errorf("artifact %q is empty", m)
		}
		artifacts = append(artifacts, Artifact{Path: m, Size: info.Size()})
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifacts, full)
	}
	return artifacts, nil
}
