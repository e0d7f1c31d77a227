package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gourmand/flatbake/internal/execx"
	"github.com/gourmand/flatbake/internal/manifest"
	"github.com/gourmand/flatbake/internal/publish"
)

type fakeCommander struct {
	calls  []execx.Command
	failOn string
	onRun  func(cmd execx.Command)
}

func (f *fakeCommander) Run(ctx context.Context, cmd execx.Command) (execx.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.onRun != nil {
		f.onRun(cmd)
	}
	if f.failOn != "" && strings.Contains(cmd.String(), f.failOn) {
		return execx.Result{Stderr: "simulated failure", ExitCode: 1}, errors.New("exit status 1")
	}
	return execx.Result{}, nil
}

func gourmandManifest() manifest.Manifest {
	return manifest.Manifest{
		Path:           "io.github.thinkle.Gourmand.yml",
		AppID:          "io.github.thinkle.Gourmand",
		Runtime:        "org.gnome.Platform",
		RuntimeVersion: "44",
		SDK:            "org.gnome.Sdk",
		Branch:         "stable",
	}
}

func TestBundleNameDeterministic(t *testing.T) {
	a := BundleName("gourmand", "1a2b3c4d")
	b := BundleName("gourmand", "1a2b3c4d")
	if a != b {
		t.Fatalf("bundle name must be deterministic: %q vs %q", a, b)
	}
	if a != "gourmand-1a2b3c4d.flatpak" {
		t.Fatalf("unexpected bundle name %q", a)
	}
}

func TestProvisionStageCommands(t *testing.T) {
	commander := &fakeCommander{}
	stage := &ProvisionStage{
		Commander:  commander,
		Root:       t.TempDir(),
		Manifest:   gourmandManifest(),
		RemoteName: "flathub",
		RemoteURL:  "https://dl.flathub.org/repo/flathub.flatpakrepo",
	}

	if _, err := stage.Run(context.Background()); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if len(commander.calls) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(commander.calls))
	}

	remoteAdd := commander.calls[0].String()
	if !strings.Contains(remoteAdd, "remote-add --if-not-exists") {
		t.Fatalf("remote-add must be idempotent, got %q", remoteAdd)
	}
	install := commander.calls[1].String()
	if !strings.Contains(install, "org.gnome.Platform//44") || !strings.Contains(install, "org.gnome.Sdk//44") {
		t.Fatalf("install must pin runtime and sdk, got %q", install)
	}
}

func TestProvisionStageFailsBeforeInstall(t *testing.T) {
	commander := &fakeCommander{failOn: "remote-add"}
	stage := &ProvisionStage{
		Commander:  commander,
		Root:       t.TempDir(),
		Manifest:   gourmandManifest(),
		RemoteName: "flathub",
		RemoteURL:  "https://dl.flathub.org/repo/flathub.flatpakrepo",
	}

	if _, err := stage.Run(context.Background()); err == nil {
		t.Fatal("expected remote-add failure to surface")
	}
	if len(commander.calls) != 1 {
		t.Fatalf("install must not run after remote-add fails, got %d calls", len(commander.calls))
	}
}

func TestProvisionStageToolCheckRunsFirst(t *testing.T) {
	commander := &fakeCommander{}
	stage := &ProvisionStage{
		Commander:  commander,
		Root:       t.TempDir(),
		Manifest:   gourmandManifest(),
		RemoteName: "flathub",
		RemoteURL:  "https://example.test/repo",
		CheckTools: func() error { return errors.New("flatpak not found") },
	}

	if _, err := stage.Run(context.Background()); err == nil {
		t.Fatal("expected tool check failure")
	}
	if len(commander.calls) != 0 {
		t.Fatalf("no command should run when tools are missing, got %d", len(commander.calls))
	}
}

func TestBuildStageForceCleans(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(".flatpak-builder", "build")
	repoDir := filepath.Join(".flatpak-builder", "repo")

	// stale state from a previous run
	stale := filepath.Join(root, repoDir, "objects")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	commander := &fakeCommander{}
	stage := &BuildStage{
		Commander: commander,
		Root:      root,
		Manifest:  gourmandManifest(),
		BuildDir:  buildDir,
		RepoDir:   repoDir,
	}

	if _, err := stage.Run(context.Background()); err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale repo contents must be removed before building")
	}

	cmd := commander.calls[0].String()
	if !strings.Contains(cmd, "--force-clean") {
		t.Fatalf("expected --force-clean, got %q", cmd)
	}
	if !strings.Contains(cmd, "--repo="+repoDir) {
		t.Fatalf("expected repo flag, got %q", cmd)
	}
	if !strings.HasSuffix(cmd, "io.github.thinkle.Gourmand.yml") {
		t.Fatalf("expected manifest argument last, got %q", cmd)
	}
}

func TestBundleStageProducesNamedBundle(t *testing.T) {
	root := t.TempDir()
	commander := &fakeCommander{
		onRun: func(cmd execx.Command) {
			// build-bundle writes the output file
			out := filepath.Join(root, "dist", "gourmand-1a2b3c4d.flatpak")
			if err := os.WriteFile(out, []byte("bundle-bytes"), 0o644); err != nil {
				t.Fatalf("write bundle: %v", err)
			}
		},
	}
	stage := &BundleStage{
		Commander: commander,
		Root:      root,
		Manifest:  gourmandManifest(),
		RepoDir:   ".flatpak-builder/repo",
		OutputDir: "dist",
		ShortHash: "1a2b3c4d",
	}

	if got := stage.BundlePath(); got != filepath.Join("dist", "gourmand-1a2b3c4d.flatpak") {
		t.Fatalf("unexpected bundle path %q", got)
	}

	if _, err := stage.Run(context.Background()); err != nil {
		t.Fatalf("bundle: %v", err)
	}

	cmd := commander.calls[0].String()
	if !strings.Contains(cmd, "build-bundle") || !strings.Contains(cmd, "io.github.thinkle.Gourmand") {
		t.Fatalf("unexpected command %q", cmd)
	}
	if !strings.Contains(cmd, "stable") {
		t.Fatalf("expected branch argument, got %q", cmd)
	}
}

func TestBundleStageRejectsMissingOutput(t *testing.T) {
	stage := &BundleStage{
		Commander: &fakeCommander{},
		Root:      t.TempDir(),
		Manifest:  gourmandManifest(),
		RepoDir:   "repo",
		OutputDir: "dist",
		ShortHash: "deadbeef",
	}

	_, err := stage.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when build-bundle produces no file")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBundleStageRejectsEmptyOutput(t *testing.T) {
	root := t.TempDir()
	commander := &fakeCommander{
		onRun: func(cmd execx.Command) {
			out := filepath.Join(root, "dist", "gourmand-deadbeef.flatpak")
			if err := os.WriteFile(out, nil, 0o644); err != nil {
				t.Fatalf("write bundle: %v", err)
			}
		},
	}
	stage := &BundleStage{
		Commander: commander,
		Root:      root,
		Manifest:  gourmandManifest(),
		RepoDir:   "repo",
		OutputDir: "dist",
		ShortHash: "deadbeef",
	}

	if _, err := stage.Run(context.Background()); err == nil {
		t.Fatal("expected error for empty bundle")
	}
}

type recordingPublisher struct {
	name      string
	artifacts []publish.Artifact
	err       error
}

func (r *recordingPublisher) Name() string { return r.name }

func (r *recordingPublisher) Publish(ctx context.Context, artifactName string, artifacts []publish.Artifact) ([]string, error) {
	r.artifacts = artifacts
	if r.err != nil {
		return nil, r.err
	}
	dests := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		dests = append(dests, r.name+"/"+artifactName+"/"+filepath.Base(a.Path))
	}
	return dests, nil
}

func TestPublishStageUploadsMatches(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	if err := os.MkdirAll(dist, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dist, "gourmand-1a2b3c4d.flatpak"), []byte("bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sink := &recordingPublisher{name: "fake"}
	stage := &PublishStage{
		Root:         root,
		OutputDir:    "dist",
		Pattern:      "gourmand-*.flatpak",
		ArtifactName: "gourmand.flatpak",
		Publishers:   []publish.Publisher{sink},
	}

	result, err := stage.Run(context.Background())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(sink.artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(sink.artifacts))
	}
	if !strings.Contains(result.Stdout, "gourmand.flatpak") {
		t.Fatalf("expected destinations in output, got %q", result.Stdout)
	}
}

func TestPublishStageFailsWithoutMatches(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "dist"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	stage := &PublishStage{
		Root:         root,
		OutputDir:    "dist",
		Pattern:      "gourmand-*.flatpak",
		ArtifactName: "gourmand.flatpak",
		Publishers:   []publish.Publisher{&recordingPublisher{name: "fake"}},
	}

	_, err := stage.Run(context.Background())
	if !errors.Is(err, publish.ErrNoArtifacts) {
		t.Fatalf("expected ErrNoArtifacts, got %v", err)
	}
}
