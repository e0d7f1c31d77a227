package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gourmand/flatbake/internal/execx"
	"github.com/gourmand/flatbake/internal/manifest"
	"github.com/gourmand/flatbake/internal/publish"
)

// BundleName returns the deterministic bundle filename for a commit:
// <prefix>-<short-hash>.flatpak. Re-running against the same commit yields
// the same name, so the bundle stage overwrites silently.
func BundleName(prefix, shortHash string) string {
	return fmt.Sprintf("%s-%s.flatpak", prefix, shortHash)
}

// ProvisionStage checks the packaging tools and installs the runtime and
// SDK pinned by the manifest. Fatal on any non-zero exit; transient network
// failures are not retried, the whole pipeline is re-run instead.
type ProvisionStage struct {
	Commander  execx.Commander
	Root       string
	Manifest   manifest.Manifest
	RemoteName string
	RemoteURL  string

	// CheckTools verifies flatpak and flatpak-builder versions before any
	// command runs. Nil skips the check.
	CheckTools func() error
}

func (s *ProvisionStage) Name() string { return "provision" }

func (s *ProvisionStage) commands() []execx.Command {
	return []execx.Command{
		{
			Name: "flatpak",
			Args: []string{"remote-add", "--if-not-exists", "--user", s.RemoteName, s.RemoteURL},
			Dir:  s.Root,
		},
		{
			Name: "flatpak",
			Args: []string{"install", "-y", "--noninteractive", "--user", s.RemoteName, s.Manifest.RuntimeRef(), s.Manifest.SDKRef()},
			Dir:  s.Root,
		},
	}
}

func (s *ProvisionStage) Plan() []string {
	return renderCommands(s.commands())
}

func (s *ProvisionStage) Run(ctx context.Context) (execx.Result, error) {
	if s.CheckTools != nil {
		if err := s.CheckTools(); err != nil {
			return execx.Result{ExitCode: 1}, err
		}
	}
	return runAll(ctx, s.Commander, s.commands())
}

// BuildStage produces the local package repository from the manifest.
// Prior build state never survives: both directories are recreated and
// flatpak-builder runs with --force-clean.
type BuildStage struct {
	Commander execx.Commander
	Root      string
	Manifest  manifest.Manifest
	BuildDir  string
	RepoDir   string
}

func (s *BuildStage) Name() string { return "build" }

func (s *BuildStage) command() execx.Command {
	return execx.Command{
		Name: "flatpak-builder",
		Args: []string{
			"--force-clean",
			"--repo=" + s.RepoDir,
			s.BuildDir,
			s.Manifest.Path,
		},
		Dir: s.Root,
	}
}

func (s *BuildStage) Plan() []string {
	return renderCommands([]execx.Command{s.command()})
}

func (s *BuildStage) Run(ctx context.Context) (execx.Result, error) {
	for _, dir := range []string{s.BuildDir, s.RepoDir} {
		full := dir
		if !filepath.IsAbs(full) {
			full = filepath.Join(s.Root, dir)
		}
		if err := os.RemoveAll(full); err != nil {
			return execx.Result{ExitCode: 1}, fmt.Errorf("clean %q: %w", dir, err)
		}
	}
	return s.Commander.Run(ctx, s.command())
}

// BundleStage packages the repository into a single distributable file
// named after the triggering commit.
type BundleStage struct {
	Commander execx.Commander
	Root      string
	Manifest  manifest.Manifest
	RepoDir   string
	OutputDir string
	ShortHash string
}

func (s *BundleStage) Name() string { return "bundle" }

// BundlePath returns the output file path relative to the repo root.
func (s *BundleStage) BundlePath() string {
	return filepath.Join(s.OutputDir, BundleName(s.Manifest.BundlePrefix(), s.ShortHash))
}

func (s *BundleStage) command() execx.Command {
	return execx.Command{
		Name: "flatpak",
		Args: []string{"build-bundle", s.RepoDir, s.BundlePath(), s.Manifest.AppID, s.Manifest.Branch},
		Dir:  s.Root,
	}
}

func (s *BundleStage) Plan() []string {
	return renderCommands([]execx.Command{s.command()})
}

func (s *BundleStage) Run(ctx context.Context) (execx.Result, error) {
	outDir := s.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(s.Root, s.OutputDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return execx.Result{ExitCode: 1}, fmt.Errorf("create output directory: %w", err)
	}

	result, err := s.Commander.Run(ctx, s.command())
	if err != nil {
		return result, err
	}

	full := s.BundlePath()
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.Root, full)
	}
	info, statErr := os.Stat(full)
	if statErr != nil {
		return result, fmt.Errorf("bundle %q missing after build-bundle: %w", s.BundlePath(), statErr)
	}
	if info.Size() == 0 {
		return result, fmt.Errorf("bundle %q is empty", s.BundlePath())
	}
	return result, nil
}

// PublishStage uploads everything matching the bundle glob. Zero matches
// fail the chain.
type PublishStage struct {
	Root         string
	OutputDir    string
	Pattern      string
	ArtifactName string
	Publishers   []publish.Publisher
}

func (s *PublishStage) Name() string { return "publish" }

func (s *PublishStage) Plan() []string {
	glob := filepath.Join(s.OutputDir, s.Pattern)
	plans := make([]string, 0, len(s.Publishers))
	for _, p := range s.Publishers {
		plans = append(plans, fmt.Sprintf("publish %s as %s to %s", glob, s.ArtifactName, p.Name()))
	}
	return plans
}

func (s *PublishStage) Run(ctx context.Context) (execx.Result, error) {
	outDir := s.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(s.Root, s.OutputDir)
	}

	artifacts, err := publish.Glob(outDir, s.Pattern)
	if err != nil {
		return execx.Result{ExitCode: 1}, err
	}

	var destinations []string
	for _, publisher := range s.Publishers {
		dests, err := publisher.Publish(ctx, s.ArtifactName, artifacts)
		destinations = append(destinations, dests...)
		if err != nil {
			return execx.Result{
				Stdout:   strings.Join(destinations, "\n"),
				ExitCode: 1,
			}, fmt.Errorf("publish to %s: %w", publisher.Name(), err)
		}
	}
	return execx.Result{Stdout: strings.Join(destinations, "\n")}, nil
}

func renderCommands(cmds []execx.Command) []string {
	out := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, cmd.String())
	}
	return out
}

func runAll(ctx context.Context, commander execx.Commander, cmds []execx.Command) (execx.Result, error) {
	var combined execx.Result
	for _, cmd := range cmds {
		result, err := commander.Run(ctx, cmd)
		combined.Stdout = joinOutput(combined.Stdout, result.Stdout)
		combined.Stderr = joinOutput(combined.Stderr, result.Stderr)
		combined.ExitCode = result.ExitCode
		if err != nil {
			return combined, err
		}
	}
	return combined, nil
}

func joinOutput(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return strings.TrimRight(a, "\n") + "\n" + b
}
