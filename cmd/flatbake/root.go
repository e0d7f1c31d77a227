package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flatbake",
		Short:         "Flatbake builds and publishes Flatpak bundles from a manifest",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("manifest", "", "flatpak manifest file (discovered if omitted)")
	persistent.String("output-dir", "", "directory for built bundles")
	persistent.String("artifact-name", "", "artifact name used when publishing")
	persistent.String("publish-dir", "", "local directory to publish artifacts into")
	persistent.String("s3-bucket", "", "S3 bucket to publish artifacts to")
	persistent.String("s3-prefix", "", "key prefix inside the S3 bucket")
	persistent.Bool("skip-publish", false, "build and bundle without publishing")
	persistent.Bool("dry-run", false, "print commands without executing them")
	persistent.BoolP("verbose", "v", false, "stream tool output in real time")
	persistent.String("format", "pretty", "output format (pretty|json)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}
