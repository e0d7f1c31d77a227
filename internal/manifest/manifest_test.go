package manifest

import (
	"strings"
	"testing"
)

const sampleManifest = `
app-id: io.github.thinkle.Gourmand
runtime: org.gnome.Platform
runtime-version: "44"
sdk: org.gnome.Sdk
modules:
  - python3-requirements.json
  - name: gourmand
    buildsystem: simple
`

func TestDecodeManifest(t *testing.T) {
	man, err := decode(strings.NewReader(sampleManifest), "io.github.thinkle.Gourmand.yml")
	if err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if man.AppID != "io.github.thinkle.Gourmand" {
		t.Fatalf("unexpected app id %q", man.AppID)
	}
	if man.RuntimeRef() != "org.gnome.Platform//44" {
		t.Fatalf("unexpected runtime ref %q", man.RuntimeRef())
	}
	if man.SDKRef() != "org.gnome.Sdk//44" {
		t.Fatalf("unexpected sdk ref %q", man.SDKRef())
	}
	if man.Branch != "stable" {
		t.Fatalf("expected default branch stable, got %q", man.Branch)
	}
	if man.ModuleCount != 2 {
		t.Fatalf("expected 2 modules, got %d", man.ModuleCount)
	}
}

func TestDecodeLegacyIDField(t *testing.T) {
	doc := `
id: org.gnome.Recipes
runtime: org.gnome.Platform
runtime-version: "44"
sdk: org.gnome.Sdk
branch: devel
`
	man, err := decode(strings.NewReader(doc), "org.gnome.Recipes.yml")
	if err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if man.AppID != "org.gnome.Recipes" {
		t.Fatalf("expected legacy id field honored, got %q", man.AppID)
	}
	if man.Branch != "devel" {
		t.Fatalf("expected explicit branch, got %q", man.Branch)
	}
}

func TestDecodeMissingFields(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"no app id", "runtime: org.gnome.Platform\nruntime-version: \"44\"\nsdk: org.gnome.Sdk\n", "app-id"},
		{"no runtime", "app-id: a.b.c\nruntime-version: \"44\"\nsdk: org.gnome.Sdk\n", "runtime"},
		{"no sdk", "app-id: a.b.c\nruntime: org.gnome.Platform\nruntime-version: \"44\"\n", "sdk"},
		{"no runtime version", "app-id: a.b.c\nruntime: org.gnome.Platform\nsdk: org.gnome.Sdk\n", "runtime-version"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decode(strings.NewReader(tc.doc), "manifest.yml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error naming %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDecodeMalformedYAML(t *testing.T) {
	if _, err := decode(strings.NewReader("app-id: ["), "broken.yml"); err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}

func TestBundlePrefix(t *testing.T) {
	man := Manifest{AppID: "io.github.thinkle.Gourmand"}
	if got := man.BundlePrefix(); got != "gourmand" {
		t.Fatalf("expected prefix gourmand, got %q", got)
	}
}
