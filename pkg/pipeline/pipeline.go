// SPDX-License-Identifier: Apache-2.0

// Package pipeline ties planning and execution together: one Handle
// call takes a natural-language request through capability scoring,
// plan generation, sequential execution, and reply shaping.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/suqilabs/suqi/pkg/audit"
	"github.com/suqilabs/suqi/pkg/executor"
	"github.com/suqilabs/suqi/pkg/planner"
	"github.com/suqilabs/suqi/pkg/telemetry"
)

// Request is one user question plus optional context carried into the
// planner prompt.
type Request struct {
	Message   string         `json:"message"`
	Filters   map[string]any `json:"filters,omitempty"`
	User      string         `json:"user,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

// PlanView is the plan section of a response.
type PlanView struct {
	Steps          []planner.Step `json:"steps"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
}

// ArtifactView summarizes one executed step without its full payload.
type ArtifactView struct {
	Tool            string `json:"tool"`
	Success         bool   `json:"success"`
	ExecutionTimeMS int64  `json:"execution_time_ms"`
	HasWarnings     bool   `json:"has_warnings"`
	Error           string `json:"error,omitempty"`
}

// ExecutionView is the execution section of a response.
type ExecutionView struct {
	TotalTimeMS int64  `json:"total_time_ms"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// Response is the full answer to one request.
type Response struct {
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
	Plan       PlanView        `json:"plan"`
	Reply      *executor.Reply `json:"reply"`
	Artifacts  []ArtifactView  `json:"artifacts"`
	Execution  ExecutionView   `json:"execution"`
	SessionID  string          `json:"session_id"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Pipeline handles requests end to end.
type Pipeline struct {
	planner  *planner.Planner
	executor *executor.Executor
	recorder *audit.Recorder
	metrics  *telemetry.PipelineMetrics
	tracer   trace.Tracer
}

// New wires a pipeline. The recorder and metrics may be nil; both
// degrade to no-ops.
func New(p *planner.Planner, e *executor.Executor, rec *audit.Recorder, metrics *telemetry.PipelineMetrics) *Pipeline {
	return &Pipeline{
		planner:  p,
		executor: e,
		recorder: rec,
		metrics:  metrics,
		tracer:   otel.Tracer("suqi/pipeline"),
	}
}

// Handle runs one request through the full pipeline. It never returns
// an error: planning always degrades to rules and execution always
// yields a well-formed result.
func (p *Pipeline) Handle(ctx context.Context, req Request) *Response {
	start := time.Now()
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, span := p.tracer.Start(ctx, "Pipeline.Handle",
		trace.WithAttributes(attribute.String("session_id", sessionID)),
	)
	defer span.End()

	plan := p.planner.Plan(ctx, req.Message, req.Filters)
	if plan.Fallback() {
		p.metrics.RecordFallback(ctx, plan.FallbackReason)
	}

	result := p.executor.Execute(ctx, plan)
	for _, a := range result.Artifacts {
		p.metrics.RecordStep(ctx, string(a.Step.Tool), a.ExecutionTimeMS, a.Success)
		if a.Verification != nil && !a.Verification.Passed {
			p.metrics.RecordVerificationFailure(ctx, string(a.Step.Tool))
		}
	}
	p.metrics.RecordRequest(ctx, plan.Intent, result.Success)

	span.SetAttributes(
		attribute.String("intent", plan.Intent),
		attribute.Bool("plan.fallback", plan.Fallback()),
		attribute.Bool("execution.success", result.Success),
	)
	slog.InfoContext(ctx, "request handled",
		"session_id", sessionID,
		"intent", plan.Intent,
		"fallback", plan.Fallback(),
		"steps", len(plan.Steps),
		"success", result.Success,
	)

	resp := buildResponse(sessionID, plan, result, time.Since(start))
	p.record(req, resp, plan)
	return resp
}

// Flush drains pending audit writes. Intended for shutdown.
func (p *Pipeline) Flush() {
	p.recorder.Flush()
}

func buildResponse(sessionID string, plan *planner.Plan, result *executor.Result, elapsed time.Duration) *Response {
	artifacts := make([]ArtifactView, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		artifacts = append(artifacts, ArtifactView{
			Tool:            string(a.Step.Tool),
			Success:         a.Success,
			ExecutionTimeMS: a.ExecutionTimeMS,
			HasWarnings:     a.HasWarnings(),
			Error:           a.Error,
		})
	}
	return &Response{
		Intent:     plan.Intent,
		Confidence: plan.Confidence,
		Plan: PlanView{
			Steps:          plan.Steps,
			FallbackReason: plan.FallbackReason,
		},
		Reply:     result.Reply,
		Artifacts: artifacts,
		Execution: ExecutionView{
			TotalTimeMS: elapsed.Milliseconds(),
			Success:     result.Success,
			Error:       result.Error,
		},
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
}

func (p *Pipeline) record(req Request, resp *Response, plan *planner.Plan) {
	replyType := ""
	if resp.Reply != nil {
		replyType = string(resp.Reply.Type)
	}
	p.recorder.Record(audit.Event{
		SessionID:  resp.SessionID,
		Query:      req.Message,
		Intent:     resp.Intent,
		Fallback:   plan.Fallback(),
		StepCount:  len(plan.Steps),
		ReplyType:  replyType,
		Success:    resp.Execution.Success,
		Error:      resp.Execution.Error,
		DurationMS: resp.Execution.TotalTimeMS,
		Plan:       resp.Plan,
		CreatedAt:  resp.Timestamp,
	})
}
