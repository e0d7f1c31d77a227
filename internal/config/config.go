package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config captures CLI options sourced from config files or flags.
type Config struct {
	Manifest string `yaml:"manifest"`

	Remote RemoteConfig `yaml:"remote"`

	BuildDir  string `yaml:"build_dir"`
	RepoDir   string `yaml:"repo_dir"`
	OutputDir string `yaml:"output_dir"`

	ArtifactName string        `yaml:"artifact_name"`
	Publish      PublishConfig `yaml:"publish"`
	SkipPublish  bool          `yaml:"skip_publish"`

	DryRun  bool   `yaml:"dry_run"`
	Verbose bool   `yaml:"verbose"`
	Format  string `yaml:"format"`
}

// RemoteConfig names the Flatpak remote used to install the runtime and SDK.
type RemoteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// PublishConfig selects where finished bundles are published.
type PublishConfig struct {
	Dir      string `yaml:"dir"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
}

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"

	// DefaultRemoteName is the Flatpak remote added when none is configured.
	DefaultRemoteName = "flathub"
	// DefaultRemoteURL points at the Flathub flatpakrepo descriptor.
	DefaultRemoteURL = "https://dl.flathub.org/repo/flathub.flatpakrepo"
)

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		Remote: RemoteConfig{
			Name: DefaultRemoteName,
			URL:  DefaultRemoteURL,
		},
		BuildDir:  filepath.Join(".flatpak-builder", "build"),
		RepoDir:   filepath.Join(".flatpak-builder", "repo"),
		OutputDir: "dist",
		Format:    FormatPretty,
	}
}

// Load reads .flatbake.yml from the repository root when present. Missing files are ignored.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, ".flatbake.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base

	if override.Manifest != "" {
		out.Manifest = override.Manifest
	}
	if override.Remote.Name != "" {
		out.Remote.Name = override.Remote.Name
	}
	if override.Remote.URL != "" {
		out.Remote.URL = override.Remote.URL
	}
	if override.BuildDir != "" {
		out.BuildDir = override.BuildDir
	}
	if override.RepoDir != "" {
		out.RepoDir = override.RepoDir
	}
	if override.OutputDir != "" {
		out.OutputDir = override.OutputDir
	}
	if override.ArtifactName != "" {
		out.ArtifactName = override.ArtifactName
	}
	if override.Publish.Dir != "" {
		out.Publish.Dir = override.Publish.Dir
	}
	if override.Publish.S3Bucket != "" {
		out.Publish.S3Bucket = override.Publish.S3Bucket
	}
	if override.Publish.S3Prefix != "" {
		out.Publish.S3Prefix = override.Publish.S3Prefix
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.SkipPublish {
		out.SkipPublish = true
	}
	if override.DryRun {
		out.DryRun = true
	}
	if override.Verbose {
		out.Verbose = true
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.Manifest.Set {
		cfg.Manifest = flags.Manifest.Value
	}
	if flags.OutputDir.Set {
		cfg.OutputDir = flags.OutputDir.Value
	}
	if flags.ArtifactName.Set {
		cfg.ArtifactName = flags.ArtifactName.Value
	}
	if flags.PublishDir.Set {
		cfg.Publish.Dir = flags.PublishDir.Value
	}
	if flags.S3Bucket.Set {
		cfg.Publish.S3Bucket = flags.S3Bucket.Value
	}
	if flags.S3Prefix.Set {
		cfg.Publish.S3Prefix = flags.S3Prefix.Value
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.SkipPublish.Set {
		cfg.SkipPublish = flags.SkipPublish.Value
	}
	if flags.DryRun.Set {
		cfg.DryRun = flags.DryRun.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Manifest     StringFlag
	OutputDir    StringFlag
	ArtifactName StringFlag
	PublishDir   StringFlag
	S3Bucket     StringFlag
	S3Prefix     StringFlag
	Format       StringFlag
	SkipPublish  BoolFlag
	DryRun       BoolFlag
	Verbose      BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}
