package report

import "time"

// Step statuses recorded for each pipeline stage.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StepResult captures the outcome of a single pipeline stage.
type StepResult struct {
	Stage      string        `json:"stage"`
	Commands   []string      `json:"commands,omitempty"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Stdout     string        `json:"stdout,omitempty"`
	Stderr     string        `json:"stderr,omitempty"`
	ExitCode   int           `json:"exit_code"`
	DryRun     bool          `json:"dry_run"`
}

// Summary aggregates pipeline execution results.
type Summary struct {
	TotalStages int           `json:"total_stages"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
	ExitCode    int           `json:"exit_code"`

	Commit string `json:"commit,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Bundle string `json:"bundle,omitempty"`
}
