// Package pipeline sequences the bundle build as a fixed fail-fast chain:
// provision, build, bundle, publish. No branching, no retries.
package pipeline

import (
	"context"
	"time"

	"github.com/gourmand/flatbake/internal/execx"
	"github.com/gourmand/flatbake/internal/report"
)

// Stage is one link in the chain. Plan returns the actions the stage would
// perform, for dry runs and the plan command.
type Stage interface {
	Name() string
	Plan() []string
	Run(ctx context.Context) (execx.Result, error)
}

// Options configure chain execution.
type Options struct {
	DryRun    bool
	TailLines int
	Now       func() time.Time
}

// Chain executes stages strictly in order, stopping at the first failure.
type Chain struct {
	opts   Options
	stages []Stage
}

// New creates a chain over the given stages.
func New(opts Options, stages ...Stage) *Chain {
	if opts.TailLines <= 0 {
		opts.TailLines = 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Chain{opts: opts, stages: stages}
}

// Stages returns the chain's stages in execution order.
func (c *Chain) Stages() []Stage {
	return c.stages
}

// Run executes the chain. Every stage gets a StepResult; stages after a
// failure are never started. The returned error is nil even when a stage
// failed: callers read Summary.ExitCode, matching a CI job's step-level
// reporting.
func (c *Chain) Run(ctx context.Context) ([]report.StepResult, report.Summary, error) {
	summary := report.Summary{TotalStages: len(c.stages)}
	results := make([]report.StepResult, 0, len(c.stages))

	for _, stage := range c.stages {
		result := report.StepResult{
			Stage:    stage.Name(),
			Commands: stage.Plan(),
			DryRun:   c.opts.DryRun,
		}

		if c.opts.DryRun {
			result.Status = report.StatusSkipped
			summary.Skipped++
			results = append(results, result)
			continue
		}

		start := c.opts.Now()
		out, err := stage.Run(ctx)
		result.Duration = c.opts.Now().Sub(start)
		result.DurationMS = result.Duration.Milliseconds()
		result.Stdout = out.Stdout
		result.Stderr = out.Stderr
		result.ExitCode = out.ExitCode

		summary.Duration += result.Duration

		if err != nil {
			result.Status = report.StatusFailed
			if result.Stderr == "" {
				result.Stderr = err.Error()
			}
			result.Stdout = execx.Tail(result.Stdout, c.opts.TailLines)
			result.Stderr = execx.Tail(result.Stderr, c.opts.TailLines)
			if result.ExitCode == 0 {
				result.ExitCode = 1
			}
			summary.Failed++
			summary.ExitCode = 1
			results = append(results, result)
			break
		}

		result.Status = report.StatusPassed
		summary.Passed++
		results = append(results, result)
	}

	summary.DurationMS = summary.Duration.Milliseconds()
	return results, summary, nil
}
