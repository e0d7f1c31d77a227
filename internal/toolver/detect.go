package toolver

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Info captures a packaging tool version installed on the system.
type Info struct {
	Name    string
	Version string
}

// Minimum tool versions the pipeline is known to work with.
const (
	MinFlatpak        = "1.10"
	MinFlatpakBuilder = "1.0"
)

var versionRegex = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// DetectFlatpak returns the system Flatpak version by calling `flatpak --version`.
func DetectFlatpak() (Info, error) {
	return detect("flatpak")
}

// DetectFlatpakBuilder returns the flatpak-builder version by calling
// `flatpak-builder --version`.
func DetectFlatpakBuilder() (Info, error) {
	return detect("flatpak-builder")
}

func detect(name string) (Info, error) {
	out, err := runCommand(name, "--version")
	if err != nil {
		return Info{}, err
	}
	match := versionRegex.FindStringSubmatch(out)
	if len(match) < 2 {
		return Info{}, fmt.Errorf("unable to parse %s version from %q", name, out)
	}
	return Info{Name: name, Version: match[1]}, nil
}

func runCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// AtLeast reports whether actual satisfies the desired minimum, comparing
// major.minor numerically.
func AtLeast(desired, actual string) bool {
	dMajor, dMinor, ok := majorMinor(desired)
	if !ok {
		return false
	}
	aMajor, aMinor, ok := majorMinor(actual)
	if !ok {
		return false
	}
	if aMajor != dMajor {
		return aMajor > dMajor
	}
	return aMinor >= dMinor
}

func majorMinor(version string) (int, int, bool) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	var major, minor int
	if _, err := fmt.Sscanf(parts[0], "%d", &major); err != nil {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &minor); err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// Missing reports whether executing the command returns a not-found error.
func Missing(cmdErr error) bool {
	return errors.Is(cmdErr, exec.ErrNotFound)
}
