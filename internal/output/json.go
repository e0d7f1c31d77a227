package output

import (
	"encoding/json"
	"io"

	"github.com/gourmand/flatbake/internal/gitver"
	"github.com/gourmand/flatbake/internal/manifest"
	"github.com/gourmand/flatbake/internal/report"
)

// JSONRenderer emits structured execution data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// StagePlan is one stage's planned actions.
type StagePlan struct {
	Stage    string   `json:"stage"`
	Commands []string `json:"commands"`
}

// Report captures the JSON output schema.
type Report struct {
	Manifest manifest.Manifest   `json:"manifest"`
	Git      gitver.Info         `json:"git"`
	Plan     []StagePlan         `json:"plan,omitempty"`
	Stages   []report.StepResult `json:"stages,omitempty"`
	Summary  report.Summary      `json:"summary"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
