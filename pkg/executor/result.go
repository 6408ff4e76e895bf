// Package executor runs execution plans step by step against the tool
// set, verifies each output, and shapes the final user-facing reply.
package executor

import (
	"github.com/suqilabs/suqi/pkg/planner"
)

// Verification is the post-hoc sanity check on one step's output.
// A failed verification on a critical tool is as severe as a thrown
// error, but is still recorded as a successful dispatch.
type Verification struct {
	Passed   bool           `json:"passed"`
	Warnings []string       `json:"warnings,omitempty"`
	Metrics  map[string]any `json:"metrics,omitempty"`
}

// Artifact records the outcome of one attempted step.
type Artifact struct {
	Step            planner.Step  `json:"step"`
	Output          any           `json:"output,omitempty"`
	ExecutionTimeMS int64         `json:"execution_time_ms"`
	Success         bool          `json:"success"`
	Error           string        `json:"error,omitempty"`
	Verification    *Verification `json:"verification_result,omitempty"`
}

// HasWarnings reports whether verification produced warnings.
func (a Artifact) HasWarnings() bool {
	return a.Verification != nil && len(a.Verification.Warnings) > 0
}

// Result is the aggregate outcome of executing a plan. Artifacts cover
// attempted steps only; execution may have halted before the plan's end.
type Result struct {
	Artifacts       []Artifact `json:"artifacts"`
	Reply           *Reply     `json:"reply"`
	ExecutionTimeMS int64      `json:"execution_time_ms"`
	Success         bool       `json:"success"`
	Error           string     `json:"error,omitempty"`
}
