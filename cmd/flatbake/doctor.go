package main

import (
	"fmt"

	"github.com/gourmand/flatbake/internal/toolver"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the repository, manifest, and packaging tools",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	data, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "repository: %s\n", data.git.Root)
	fmt.Fprintf(out, "commit:     %s", data.git.Short)
	if data.git.Tag != "" {
		fmt.Fprintf(out, " (tag %s)", data.git.Tag)
	}
	if data.git.Dirty {
		fmt.Fprintf(out, " (uncommitted changes)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "manifest:   %s\n", data.man.Path)
	fmt.Fprintf(out, "app:        %s (%d modules)\n", data.man.AppID, data.man.ModuleCount)
	fmt.Fprintf(out, "runtime:    %s\n", data.man.RuntimeRef())
	fmt.Fprintf(out, "sdk:        %s\n", data.man.SDKRef())

	var failed bool
	for _, detect := range []struct {
		name string
		min  string
		fn   func() (toolver.Info, error)
	}{
		{"flatpak", toolver.MinFlatpak, toolver.DetectFlatpak},
		{"flatpak-builder", toolver.MinFlatpakBuilder, toolver.DetectFlatpakBuilder},
	} {
		info, err := detect.fn()
		switch {
		case err != nil && toolver.Missing(err):
			fmt.Fprintf(out, "%s: not found\n", detect.name)
			failed = true
		case err != nil:
			fmt.Fprintf(out, "%s: %v\n", detect.name, err)
			failed = true
		case !toolver.AtLeast(detect.min, info.Version):
			fmt.Fprintf(out, "%s: %s (need at least %s)\n", detect.name, info.Version, detect.min)
			failed = true
		default:
			fmt.Fprintf(out, "%s: %s\n", detect.name, info.Version)
		}
	}

	if failed {
		return fmt.Errorf("environment is not ready")
	}
	return nil
}
