package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local copies artifacts into a directory on disk. A single artifact is
// stored under the artifact name itself; several are grouped in a directory
// named after it, keeping their own filenames.
type Local struct {
	Dir string
}

// NewLocal creates a Local publisher rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

// Name identifies the publisher in plans and results.
func (l *Local) Name() string {
	return "local:" + l.Dir
}

// Publish copies each artifact into the target directory.
func (l *Local) Publish(ctx context.Context, artifactName string, artifacts []Artifact) ([]string, error) {
	if len(artifacts) == 0 {
		return nil, ErrNoArtifacts
	}

	destinations := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return destinations, err
		}

		dest := filepath.Join(l.Dir, artifactName)
		if len(artifacts) > 1 {
			dest = filepath.Join(l.Dir, artifactName, filepath.Base(artifact.Path))
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return destinations, fmt.Errorf("create artifact directory: %w", err)
		}
		if err := copyFile(artifact.Path, dest); err != nil {
			return destinations, err
		}
		destinations = append(destinations, dest)
	}
	return destinations, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %q to %q: %w", src, dest, err)
	}
	return out.Close()
}
