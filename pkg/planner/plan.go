// Package planner turns a free-text query into an ordered execution
// plan. Planning is LLM-first with a deterministic rule-based fallback,
// so it always produces an actionable plan and never returns an error
// to its caller.
package planner

import (
	"github.com/suqilabs/suqi/pkg/registry"
)

// Step is one unit of work in an execution plan.
type Step struct {
	Tool   registry.Code  `json:"tool"`
	Params map[string]any `json:"params"`
	Reason string         `json:"reason"`
}

// Plan is an ordered sequence of steps plus planning metadata. Steps
// execute sequentially in slice order.
type Plan struct {
	Intent         string  `json:"intent"`
	Steps          []Step  `json:"steps"`
	Confidence     float64 `json:"confidence"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
}

// Fallback reports whether this plan came from the rule-based path.
func (p *Plan) Fallback() bool {
	return p.FallbackReason != ""
}

// clampConfidence forces a confidence into [0,1], substituting the
// default for non-finite or out-of-range junk the model may produce.
func clampConfidence(c float64) float64 {
	if c != c { // NaN
		return defaultPlanConfidence
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
