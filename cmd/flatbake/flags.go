package main

import (
	"fmt"

	"github.com/gourmand/flatbake/internal/config"
	"github.com/spf13/cobra"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("manifest") {
		v, err := flags.GetString("manifest")
		if err != nil {
			return values, fmt.Errorf("parse --manifest: %w", err)
		}
		values.Manifest = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("output-dir") {
		v, err := flags.GetString("output-dir")
		if err != nil {
			return values, fmt.Errorf("parse --output-dir: %w", err)
		}
		values.OutputDir = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("artifact-name") {
		v, err := flags.GetString("artifact-name")
		if err != nil {
			return values, fmt.Errorf("parse --artifact-name: %w", err)
		}
		values.ArtifactName = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("publish-dir") {
		v, err := flags.GetString("publish-dir")
		if err != nil {
			return values, fmt.Errorf("parse --publish-dir: %w", err)
		}
		values.PublishDir = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("s3-bucket") {
		v, err := flags.GetString("s3-bucket")
		if err != nil {
			return values, fmt.Errorf("parse --s3-bucket: %w", err)
		}
		values.S3Bucket = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("s3-prefix") {
		v, err := flags.GetString("s3-prefix")
		if err != nil {
			return values, fmt.Errorf("parse --s3-prefix: %w", err)
		}
		values.S3Prefix = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return values, fmt.Errorf("parse --format: %w", err)
		}
		values.Format = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("skip-publish") {
		v, err := flags.GetBool("skip-publish")
		if err != nil {
			return values, fmt.Errorf("parse --skip-publish: %w", err)
		}
		values.SkipPublish = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("dry-run") {
		v, err := flags.GetBool("dry-run")
		if err != nil {
			return values, fmt.Errorf("parse --dry-run: %w", err)
		}
		values.DryRun = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}
