package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/suqilabs/suqi/pkg/llm"
	"github.com/suqilabs/suqi/pkg/registry"
	"github.com/suqilabs/suqi/pkg/scorer"
)

const (
	// topCandidateLimit is how many scorer candidates are surfaced to
	// the model as planning context.
	topCandidateLimit = 3

	// defaultPlanConfidence is used when the model omits or mangles the
	// confidence field.
	defaultPlanConfidence = 0.7
)

// Options tunes the generative planning call.
type Options struct {
	Model       string
	Temperature float64
}

// Planner produces execution plans, preferring the language model and
// degrading to deterministic keyword rules when the model is
// unavailable or its output is unusable.
type Planner struct {
	provider llm.Provider
	scorer   *scorer.Scorer
	reg      *registry.Registry
	opts     Options
	tracer   trace.Tracer
}

// New creates a planner. A nil provider disables generative planning
// entirely; every request then takes the rule-based path.
func New(provider llm.Provider, sc *scorer.Scorer, reg *registry.Registry, opts Options) *Planner {
	return &Planner{
		provider: provider,
		scorer:   sc,
		reg:      reg,
		opts:     opts,
		tracer:   otel.Tracer("suqi/planner"),
	}
}

// Plan converts a query into an execution plan. It never returns an
// error: all failure paths degrade to the rule-based fallback plan
// with FallbackReason set.
func (p *Planner) Plan(ctx context.Context, query string, reqContext map[string]any) *Plan {
	ctx, span := p.tracer.Start(ctx, "Planner.Plan",
		trace.WithAttributes(attribute.Int("query.length", len(query))),
	)
	defer span.End()

	candidates := p.scorer.Top(query, topCandidateLimit)

	plan, err := p.generate(ctx, query, reqContext, candidates)
	if err != nil {
		slog.WarnContext(ctx, "generative planning failed, using rule-based fallback",
			"error", err)
		span.SetAttributes(attribute.Bool("plan.fallback", true))
		return p.fallback(query, err.Error())
	}
	span.SetAttributes(
		attribute.Bool("plan.fallback", false),
		attribute.Int("plan.steps", len(plan.Steps)),
	)
	return plan
}

// llmPlan mirrors the JSON shape the system prompt demands.
type llmPlan struct {
	Intent     string    `json:"intent"`
	Steps      []llmStep `json:"steps"`
	Confidence *float64  `json:"confidence"`
}

type llmStep struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
	Reason string         `json:"reason"`
}

func (p *Planner) generate(ctx context.Context, query string, reqContext map[string]any, candidates []scorer.AgentScore) (*Plan, error) {
	if p.provider == nil {
		return nil, fmt.Errorf("no language model configured")
	}

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model:       p.opts.Model,
		System:      systemPrompt,
		User:        buildUserPrompt(query, reqContext, candidates),
		Temperature: p.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("model completion failed: %w", err)
	}

	var payload llmPlan
	if err := decodeInto(resp.Content, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Intent) == "" {
		return nil, fmt.Errorf("model plan missing intent")
	}
	if len(payload.Steps) == 0 {
		return nil, fmt.Errorf("model plan has no steps")
	}

	steps := p.filterSteps(ctx, payload.Steps)
	if len(steps) == 0 {
		return nil, fmt.Errorf("model plan contained no valid steps")
	}

	confidence := defaultPlanConfidence
	if payload.Confidence != nil {
		confidence = clampConfidence(*payload.Confidence)
	}

	return &Plan{
		Intent:     payload.Intent,
		Steps:      steps,
		Confidence: confidence,
	}, nil
}

// filterSteps drops steps referencing unknown tools or lacking params
// or a reason. Tools that declare no inputs (AUTO_SYNC_FLAT) are
// allowed an empty params object.
func (p *Planner) filterSteps(ctx context.Context, raw []llmStep) []Step {
	var out []Step
	for _, s := range raw {
		code := registry.Code(strings.ToUpper(strings.TrimSpace(s.Tool)))
		cap, known := p.reg.Get(code)
		if !known {
			slog.DebugContext(ctx, "dropping step with unknown tool", "tool", s.Tool)
			continue
		}
		if s.Params == nil {
			slog.DebugContext(ctx, "dropping step without params", "tool", code)
			continue
		}
		if len(cap.Inputs) > 0 && len(s.Params) == 0 {
			slog.DebugContext(ctx, "dropping step with empty params", "tool", code)
			continue
		}
		if strings.TrimSpace(s.Reason) == "" {
			slog.DebugContext(ctx, "dropping step without reason", "tool", code)
			continue
		}
		out = append(out, Step{Tool: code, Params: s.Params, Reason: s.Reason})
	}
	return out
}
