package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest holds the fields of a Flatpak application manifest that the
// pipeline needs. The manifest file itself is owned by flatpak-builder and
// is never mutated; everything else in it is passed through untouched.
type Manifest struct {
	Path           string `json:"path"`
	AppID          string `json:"app_id"`
	Runtime        string `json:"runtime"`
	RuntimeVersion string `json:"runtime_version"`
	SDK            string `json:"sdk"`
	Branch         string `json:"branch"`
	ModuleCount    int    `json:"module_count"`
}

type manifestDocument struct {
	AppID          string   `yaml:"app-id"`
	ID             string   `yaml:"id"`
	Runtime        string   `yaml:"runtime"`
	RuntimeVersion string   `yaml:"runtime-version"`
	SDK            string   `yaml:"sdk"`
	Branch         string   `yaml:"branch"`
	Modules        []module `yaml:"modules"`
}

// module entries may be inline maps or string references to other files;
// only their presence matters here.
type module struct {
	Name string
}

func (m *module) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		m.Name = value.Value
		return nil
	case yaml.MappingNode:
		var doc struct {
			Name string `yaml:"name"`
		}
		if err := value.Decode(&doc); err != nil {
			return err
		}
		m.Name = doc.Name
		return nil
	default:
		return fmt.Errorf("unexpected module entry at line %d", value.Line)
	}
}

// Parse reads the manifest at fullPath and validates the fields required to
// provision, build, and bundle the application. displayPath is used in
// error messages and the reported model.
func Parse(fullPath, displayPath string) (Manifest, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return Manifest{}, fmt.Errorf("open manifest %q: %w", displayPath, err)
	}
	defer f.Close()
	return decode(f, displayPath)
}

func decode(r io.Reader, displayPath string) (Manifest, error) {
	decoder := yaml.NewDecoder(r)

	var doc manifestDocument
	if err := decoder.Decode(&doc); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %q: %w", displayPath, err)
	}

	appID := doc.AppID
	if appID == "" {
		appID = doc.ID
	}
	if appID == "" {
		return Manifest{}, fmt.Errorf("manifest %q: missing app-id", displayPath)
	}
	if doc.Runtime == "" {
		return Manifest{}, fmt.Errorf("manifest %q: missing runtime", displayPath)
	}
	if doc.SDK == "" {
		return Manifest{}, fmt.Errorf("manifest %q: missing sdk", displayPath)
	}
	if doc.RuntimeVersion == "" {
		return Manifest{}, fmt.Errorf("manifest %q: missing runtime-version", displayPath)
	}

	branch := doc.Branch
	if branch == "" {
		branch = "stable"
	}

	return Manifest{
		Path:           displayPath,
		AppID:          appID,
		Runtime:        doc.Runtime,
		RuntimeVersion: doc.RuntimeVersion,
		SDK:            doc.SDK,
		Branch:         branch,
		ModuleCount:    len(doc.Modules),
	}, nil
}

// BundlePrefix derives the bundle filename prefix from the app id: the last
// reverse-DNS segment, lowercased. io.github.thinkle.Gourmand -> gourmand.
func (m Manifest) BundlePrefix() string {
	segments := strings.Split(m.AppID, ".")
	return strings.ToLower(segments[len(segments)-1])
}

// RuntimeRef returns the runtime in NAME//BRANCH install notation.
func (m Manifest) RuntimeRef() string {
	return fmt.Sprintf("%s//%s", m.Runtime, m.RuntimeVersion)
}

// SDKRef returns the SDK in NAME//BRANCH install notation.
func (m Manifest) SDKRef() string {
	return fmt.Sprintf("%s//%s", m.SDK, m.RuntimeVersion)
}

// Rel returns the manifest path relative to root when possible.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
