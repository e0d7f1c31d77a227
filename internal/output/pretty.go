package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/gourmand/flatbake/internal/report"
)

// PrettyRenderer renders execution results in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

var (
	passMark = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	skipMark = color.New(color.FgYellow).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

// RenderHeader prints the app and commit line shared by run and plan.
func (p *PrettyRenderer) RenderHeader(appID, commit, tag string) {
	line := fmt.Sprintf("%s @ %s", appID, commit)
	if tag != "" {
		line += fmt.Sprintf(" (tag %s)", tag)
	}
	fmt.Fprintln(p.out, line)
	fmt.Fprintln(p.out)
}

// RenderPlan renders each stage's planned actions without executing.
func (p *PrettyRenderer) RenderPlan(plans []StagePlan) error {
	for _, plan := range plans {
		fmt.Fprintf(p.out, "%s:\n", plan.Stage)
		for _, cmd := range plan.Commands {
			fmt.Fprintf(p.out, "  %s\n", cmd)
		}
	}
	return nil
}

// RenderResults renders the per-stage table and summary line.
func (p *PrettyRenderer) RenderResults(results []report.StepResult, summary report.Summary) error {
	width := 0
	for _, r := range results {
		if len(r.Stage) > width {
			width = len(r.Stage)
		}
	}

	for _, r := range results {
		mark := passMark("✓")
		switch r.Status {
		case report.StatusFailed:
			mark = failMark("✗")
		case report.StatusSkipped:
			mark = skipMark("-")
		}

		duration := ""
		if !r.DryRun {
			duration = dimText(formatDuration(r.Duration))
		}
		fmt.Fprintf(p.out, "  %s %-*s  %s\n", mark, width, r.Stage, duration)

		if r.DryRun {
			for _, cmd := range r.Commands {
				fmt.Fprintf(p.out, "      %s\n", dimText(cmd))
			}
		}
		if r.Status == report.StatusFailed && r.Stderr != "" {
			for _, line := range strings.Split(r.Stderr, "\n") {
				fmt.Fprintf(p.out, "      %s\n", line)
			}
		}
	}

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%d stages: %d passed, %d failed, %d skipped (%s)\n",
		summary.TotalStages, summary.Passed, summary.Failed, summary.Skipped,
		formatDuration(summary.Duration))
	if summary.Bundle != "" && summary.ExitCode == 0 && summary.Skipped == 0 {
		fmt.Fprintf(p.out, "bundle: %s\n", summary.Bundle)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
