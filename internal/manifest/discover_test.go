package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("app-id: x.y.z\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverSingleCandidate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "io.github.thinkle.Gourmand.yml"))
	writeFile(t, filepath.Join(root, "notes.yml"))

	path, err := Discover(root, "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if path != "io.github.thinkle.Gourmand.yml" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestDiscoverSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build-aux", "org.gnome.Recipes.json"))

	path, err := Discover(root, "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if path != filepath.Join("build-aux", "org.gnome.Recipes.json") {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestDiscoverNone(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config.yml"))

	_, err := Discover(root, "")
	if !errors.Is(err, ErrNoManifest) {
		t.Fatalf("expected ErrNoManifest, got %v", err)
	}
}

func TestDiscoverAmbiguous(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "io.github.thinkle.Gourmand.yml"))
	writeFile(t, filepath.Join(root, "org.gnome.Recipes.yaml"))

	_, err := Discover(root, "")
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	if !strings.Contains(err.Error(), "--manifest") {
		t.Fatalf("expected hint to pass --manifest, got %v", err)
	}
}

func TestDiscoverExplicit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "custom", "app.yml"))

	path, err := Discover(root, filepath.Join("custom", "app.yml"))
	if err != nil {
		t.Fatalf("discover explicit: %v", err)
	}
	if path != filepath.Join("custom", "app.yml") {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestDiscoverExplicitMissing(t *testing.T) {
	root := t.TempDir()
	if _, err := Discover(root, "nope.yml"); err == nil {
		t.Fatal("expected error for missing explicit manifest")
	}
}

func TestDiscoverExplicitDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "dir.yml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Discover(root, "dir.yml"); err == nil {
		t.Fatal("expected error for directory manifest")
	}
}
