package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gourmand/flatbake/internal/config"
	"github.com/gourmand/flatbake/internal/execx"
	"github.com/gourmand/flatbake/internal/gitver"
	"github.com/gourmand/flatbake/internal/manifest"
	"github.com/gourmand/flatbake/internal/pipeline"
	"github.com/gourmand/flatbake/internal/publish"
	"github.com/gourmand/flatbake/internal/toolver"
	"github.com/spf13/cobra"
)

// pipelineData bundles the resolved repository, config, and manifest.
type pipelineData struct {
	cfg config.Config
	git gitver.Info
	man manifest.Manifest
}

func loadPipeline(cmd *cobra.Command) (pipelineData, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return pipelineData{}, fmt.Errorf("determine working directory: %w", err)
	}

	git, err := gitver.Resolve(cwd)
	if err != nil {
		return pipelineData{}, err
	}

	cfg, err := config.Load(git.Root)
	if err != nil {
		return pipelineData{}, err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return pipelineData{}, err
	}
	config.ApplyFlags(&cfg, flags)

	manifestPath, err := manifest.Discover(git.Root, cfg.Manifest)
	if err != nil {
		return pipelineData{}, err
	}

	man, err := manifest.Parse(filepath.Join(git.Root, manifestPath), manifestPath)
	if err != nil {
		return pipelineData{}, err
	}

	return pipelineData{cfg: cfg, git: git, man: man}, nil
}

// buildChain assembles the stage chain. The returned bundle stage exposes
// the output path for the summary.
func buildChain(ctx context.Context, data pipelineData, commander execx.Commander) (*pipeline.Chain, *pipeline.BundleStage, error) {
	cfg := data.cfg

	bundle := &pipeline.BundleStage{
		Commander: commander,
		Root:      data.git.Root,
		Manifest:  data.man,
		RepoDir:   cfg.RepoDir,
		OutputDir: cfg.OutputDir,
		ShortHash: data.git.Short,
	}

	stages := []pipeline.Stage{
		&pipeline.ProvisionStage{
			Commander:  commander,
			Root:       data.git.Root,
			Manifest:   data.man,
			RemoteName: cfg.Remote.Name,
			RemoteURL:  cfg.Remote.URL,
			CheckTools: checkTools,
		},
		&pipeline.BuildStage{
			Commander: commander,
			Root:      data.git.Root,
			Manifest:  data.man,
			BuildDir:  cfg.BuildDir,
			RepoDir:   cfg.RepoDir,
		},
		bundle,
	}

	if !cfg.SkipPublish {
		publishers, err := buildPublishers(ctx, data.git.Root, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Scoped to the current commit's bundle name: unlike a CI runner's
		// fresh workspace, a local output dir accumulates bundles from
		// prior commits, and stale ones must never be published.
		stages = append(stages, &pipeline.PublishStage{
			Root:         data.git.Root,
			OutputDir:    cfg.OutputDir,
			Pattern:      pipeline.BundleName(data.man.BundlePrefix(), data.git.Short),
			ArtifactName: artifactName(cfg, data.man),
			Publishers:   publishers,
		})
	}

	chain := pipeline.New(pipeline.Options{DryRun: cfg.DryRun}, stages...)
	return chain, bundle, nil
}

func buildPublishers(ctx context.Context, root string, cfg config.Config) ([]publish.Publisher, error) {
	var publishers []publish.Publisher

	dir := cfg.Publish.Dir
	if dir == "" && cfg.Publish.S3Bucket == "" {
		dir = "artifacts"
	}
	if dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		publishers = append(publishers, publish.NewLocal(dir))
	}

	if cfg.Publish.S3Bucket != "" {
		s3Publisher, err := publish.NewS3(ctx, cfg.Publish.S3Bucket, cfg.Publish.S3Prefix)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, s3Publisher)
	}

	return publishers, nil
}

func artifactName(cfg config.Config, man manifest.Manifest) string {
	if cfg.ArtifactName != "" {
		return cfg.ArtifactName
	}
	return man.BundlePrefix() + ".flatpak"
}

// pipelineWarnings reports non-fatal conditions worth surfacing alongside
// the results.
func pipelineWarnings(data pipelineData) []string {
	var warnings []string
	if data.git.Dirty {
		bundle := pipeline.BundleName(data.man.BundlePrefix(), data.git.Short)
		warnings = append(warnings, fmt.Sprintf(
			"worktree has uncommitted changes; %s is named after commit %s but may not match its content",
			bundle, data.git.Short))
	}
	return warnings
}

func checkTools() error {
	flatpak, err := toolver.DetectFlatpak()
	if err != nil {
		if toolver.Missing(err) {
			return fmt.Errorf("flatpak not found; install the flatpak package for your distribution")
		}
		return fmt.Errorf("detect flatpak version: %w", err)
	}
	if !toolver.AtLeast(toolver.MinFlatpak, flatpak.Version) {
		return fmt.Errorf("flatpak %s is older than required %s", flatpak.Version, toolver.MinFlatpak)
	}

	builder, err := toolver.DetectFlatpakBuilder()
	if err != nil {
		if toolver.Missing(err) {
			return fmt.Errorf("flatpak-builder not found; install the flatpak-builder package for your distribution")
		}
		return fmt.Errorf("detect flatpak-builder version: %w", err)
	}
	if !toolver.AtLeast(toolver.MinFlatpakBuilder, builder.Version) {
		return fmt.Errorf("flatpak-builder %s is older than required %s", builder.Version, toolver.MinFlatpakBuilder)
	}

	return nil
}
