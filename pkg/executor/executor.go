package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/suqilabs/suqi/pkg/planner"
	"github.com/suqilabs/suqi/pkg/registry"
	"github.com/suqilabs/suqi/pkg/tools"
)

// Executor runs plans sequentially against a tool set. Steps execute
// strictly in plan order: a later step may be pointless once an earlier
// critical step has failed.
type Executor struct {
	tools  tools.ToolSet
	tracer trace.Tracer
}

// New creates an executor over a tool set.
func New(ts tools.ToolSet) *Executor {
	return &Executor{
		tools:  ts,
		tracer: otel.Tracer("suqi/executor"),
	}
}

// Execute runs every step the continuation policy allows and returns a
// well-formed result in all cases; nothing here is fatal to the caller.
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan) *Result {
	start := time.Now()
	res := &Result{Success: true}

	if plan == nil || len(plan.Steps) == 0 {
		res.Success = false
		res.Error = "plan has no steps"
		res.Reply = synthesizeReply(nil)
		res.ExecutionTimeMS = time.Since(start).Milliseconds()
		return res
	}

	for _, step := range plan.Steps {
		artifact := e.runStep(ctx, step)
		res.Artifacts = append(res.Artifacts, artifact)

		if !artifact.Success {
			res.Success = false
			if res.Error == "" {
				res.Error = artifact.Error
			}
			if !continueAfterFailure(step.Tool) {
				break
			}
		}
	}

	res.Reply = synthesizeReply(res.Artifacts)
	res.ExecutionTimeMS = time.Since(start).Milliseconds()
	return res
}

func (e *Executor) runStep(ctx context.Context, step planner.Step) Artifact {
	ctx, span := e.tracer.Start(ctx, "Executor.Step",
		trace.WithAttributes(
			attribute.String("tool", string(step.Tool)),
			attribute.Bool("tool.critical", critical(step.Tool)),
		),
	)
	defer span.End()

	start := time.Now()
	output, verification, err := e.dispatch(ctx, step)
	artifact := Artifact{
		Step:            step,
		Output:          output,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}

	if err != nil {
		artifact.Success = false
		artifact.Error = err.Error()
		span.SetAttributes(attribute.Bool("step.success", false))
		return artifact
	}

	artifact.Verification = &verification
	if !verification.Passed {
		// Dispatch succeeded but the output is semantically unusable;
		// that is as bad as a thrown error.
		artifact.Success = false
		artifact.Error = "verification failed: " + strings.Join(verification.Warnings, "; ")
	} else {
		artifact.Success = true
	}
	span.SetAttributes(
		attribute.Bool("step.success", artifact.Success),
		attribute.Bool("step.verified", verification.Passed),
	)
	return artifact
}

// dispatch routes a step to its tool. The tool set is a closed enum:
// an unknown code is a dispatch error, not a silent fallthrough.
func (e *Executor) dispatch(ctx context.Context, step planner.Step) (any, Verification, error) {
	switch step.Tool {
	case registry.SemanticQuery:
		var params tools.QueryParams
		if err := decodeParams(step.Params, &params); err != nil {
			return nil, Verification{}, err
		}
		out, err := e.tools.SemanticQuery(ctx, params)
		if err != nil {
			return nil, Verification{}, err
		}
		return out, verifySemanticQuery(params, out), nil

	case registry.GeoExport:
		var params tools.GeoParams
		if err := decodeParams(step.Params, &params); err != nil {
			return nil, Verification{}, err
		}
		out, err := e.tools.GeoExport(ctx, params)
		if err != nil {
			return nil, Verification{}, err
		}
		return out, verifyGeoExport(out), nil

	case registry.ParityCheck:
		var params tools.ParityParams
		if err := decodeParams(step.Params, &params); err != nil {
			return nil, Verification{}, err
		}
		out, err := e.tools.ParityCheck(ctx, params)
		if err != nil {
			return nil, Verification{}, err
		}
		return out, verifyParityCheck(out), nil

	case registry.AutoSyncFlat:
		out, err := e.tools.AutoSyncFlat(ctx)
		if err != nil {
			return nil, Verification{}, err
		}
		return out, verifyAutoSync(out), nil

	case registry.CatalogQA:
		var params struct {
			Question string `json:"question"`
		}
		if err := decodeParams(step.Params, &params); err != nil {
			return nil, Verification{}, err
		}
		out, err := e.tools.CatalogQA(ctx, params.Question)
		if err != nil {
			return nil, Verification{}, err
		}
		return out, verifyCatalogQA(out), nil

	default:
		return nil, Verification{}, fmt.Errorf("unknown tool %q", step.Tool)
	}
}

// decodeParams converts the plan's free-form params into a tool's typed
// input via a JSON round trip.
func decodeParams(params map[string]any, out any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode step params: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("step params do not satisfy the tool contract: %w", err)
	}
	return nil
}
