package main

import (
	"fmt"
	"strings"

	"github.com/gourmand/flatbake/internal/config"
	"github.com/gourmand/flatbake/internal/execx"
	"github.com/gourmand/flatbake/internal/output"
	"github.com/gourmand/flatbake/internal/report"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the commands a run would execute",
		RunE:  runPlan,
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	data, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	// Planning never spawns anything; the commander exists only because the
	// stages carry one.
	commander := execx.New(execx.Options{})
	chain, bundle, err := buildChain(cmd.Context(), data, commander)
	if err != nil {
		return err
	}

	plans := make([]output.StagePlan, 0, len(chain.Stages()))
	for _, stage := range chain.Stages() {
		plans = append(plans, output.StagePlan{Stage: stage.Name(), Commands: stage.Plan()})
	}

	warnings := pipelineWarnings(data)

	switch strings.ToLower(data.cfg.Format) {
	case config.FormatPretty:
		renderer := output.NewPretty(cmd.OutOrStdout())
		renderer.RenderHeader(data.man.AppID, data.git.Short, data.git.Tag)
		if err := renderer.RenderPlan(plans); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nbundle: %s\n", bundle.BundlePath())
		for _, msg := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
		}
	case config.FormatJSON:
		jsonReport := output.Report{
			Manifest: data.man,
			Git:      data.git,
			Plan:     plans,
			Summary: report.Summary{
				TotalStages: len(plans),
				Commit:      data.git.Short,
				Tag:         data.git.Tag,
				Bundle:      bundle.BundlePath(),
			},
			Warnings: warnings,
		}
		renderer := output.NewJSON(cmd.OutOrStdout())
		if err := renderer.Render(jsonReport); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", data.cfg.Format)
	}

	return nil
}
