package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gourmand/flatbake/internal/config"
	"github.com/gourmand/flatbake/internal/execx"
	"github.com/gourmand/flatbake/internal/output"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build, bundle, and publish the Flatpak application",
		RunE:  runExecute,
	}
}

func runExecute(cmd *cobra.Command, args []string) error {
	data, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commander := execx.New(execx.Options{
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Verbose: data.cfg.Verbose,
	})

	chain, bundle, err := buildChain(ctx, data, commander)
	if err != nil {
		return err
	}

	results, summary, err := chain.Run(ctx)
	if err != nil {
		return err
	}

	summary.Commit = data.git.Short
	summary.Tag = data.git.Tag
	summary.Bundle = bundle.BundlePath()

	warnings := pipelineWarnings(data)

	switch strings.ToLower(data.cfg.Format) {
	case config.FormatPretty:
		renderer := output.NewPretty(cmd.OutOrStdout())
		renderer.RenderHeader(data.man.AppID, data.git.Short, data.git.Tag)
		if err := renderer.RenderResults(results, summary); err != nil {
			return err
		}
		for _, msg := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
		}
	case config.FormatJSON:
		jsonReport := output.Report{
			Manifest: data.man,
			Git:      data.git,
			Stages:   results,
			Summary:  summary,
			Warnings: warnings,
		}
		renderer := output.NewJSON(cmd.OutOrStdout())
		if err := renderer.Render(jsonReport); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", data.cfg.Format)
	}

	if summary.ExitCode != 0 {
		return fmt.Errorf("pipeline failed")
	}

	return nil
}
