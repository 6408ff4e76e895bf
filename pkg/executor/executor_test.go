package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/suqilabs/suqi/pkg/planner"
	"github.com/suqilabs/suqi/pkg/registry"
	"github.com/suqilabs/suqi/pkg/tools"
)

// stubToolSet returns canned outputs, overridable per test.
type stubToolSet struct {
	queryFn   func(ctx context.Context, params tools.QueryParams) (*tools.QueryResult, error)
	geoFn     func(ctx context.Context, params tools.GeoParams) (*tools.GeoResult, error)
	parityFn  func(ctx context.Context, params tools.ParityParams) (*tools.ParityResult, error)
	syncFn    func(ctx context.Context) (*tools.SyncResult, error)
	catalogFn func(ctx context.Context, question string) (*tools.CatalogAnswer, error)
}

func (s *stubToolSet) SemanticQuery(ctx context.Context, params tools.QueryParams) (*tools.QueryResult, error) {
	if s.queryFn != nil {
		return s.queryFn(ctx, params)
	}
	return &tools.QueryResult{
		Data:     []map[string]any{{"category": "snacks", "revenue": 100.0, "transactions": 5.0}},
		RowCount: 1,
	}, nil
}

func (s *stubToolSet) GeoExport(ctx context.Context, params tools.GeoParams) (*tools.GeoResult, error) {
	if s.geoFn != nil {
		return s.geoFn(ctx, params)
	}
	return &tools.GeoResult{
		Features: []tools.GeoFeature{{
			Type:       "Feature",
			Geometry:   map[string]any{"type": "Point", "coordinates": []float64{121.0, 14.6}},
			Properties: map[string]any{"city": "Manila", "revenue": 100.0},
		}},
		FeatureCount: 1,
	}, nil
}

func (s *stubToolSet) ParityCheck(ctx context.Context, params tools.ParityParams) (*tools.ParityResult, error) {
	if s.parityFn != nil {
		return s.parityFn(ctx, params)
	}
	return &tools.ParityResult{Status: tools.StatusOK, DaysChecked: params.DaysBack}, nil
}

func (s *stubToolSet) AutoSyncFlat(ctx context.Context) (*tools.SyncResult, error) {
	if s.syncFn != nil {
		return s.syncFn(ctx)
	}
	return &tools.SyncResult{Status: tools.StatusInitiated, RunID: "run-1"}, nil
}

func (s *stubToolSet) CatalogQA(ctx context.Context, question string) (*tools.CatalogAnswer, error) {
	if s.catalogFn != nil {
		return s.catalogFn(ctx, question)
	}
	return &tools.CatalogAnswer{Answer: "a long enough catalog answer", Confidence: 0.8}, nil
}

func step(tool registry.Code, params map[string]any) planner.Step {
	if params == nil {
		params = map[string]any{}
	}
	return planner.Step{Tool: tool, Params: params, Reason: "test"}
}

func TestContinuesPastNonCriticalFailure(t *testing.T) {
	ts := &stubToolSet{
		parityFn: func(ctx context.Context, params tools.ParityParams) (*tools.ParityResult, error) {
			return nil, errors.New("parity backend down")
		},
	}
	plan := &planner.Plan{
		Intent: "quality then data",
		Steps: []planner.Step{
			step(registry.ParityCheck, map[string]any{"daysBack": 30}),
			step(registry.SemanticQuery, map[string]any{"dimensions": []string{"category"}, "measures": []string{"revenue"}}),
		},
	}

	res := New(ts).Execute(context.Background(), plan)
	if len(res.Artifacts) != 2 {
		t.Fatalf("expected execution to continue past PARITY_CHECK failure, got %d artifacts", len(res.Artifacts))
	}
	if res.Success {
		t.Fatalf("overall success must be false after a step failure")
	}
	if !res.Artifacts[1].Success {
		t.Fatalf("second step should have succeeded")
	}
	if res.Reply.Type != ReplyTable {
		t.Fatalf("reply should come from the last successful artifact, got %s", res.Reply.Type)
	}
}

func TestHaltsOnCriticalFailure(t *testing.T) {
	ts := &stubToolSet{
		queryFn: func(ctx context.Context, params tools.QueryParams) (*tools.QueryResult, error) {
			return nil, errors.New("warehouse unreachable")
		},
	}
	plan := &planner.Plan{
		Intent: "data then quality",
		Steps: []planner.Step{
			step(registry.SemanticQuery, map[string]any{"dimensions": []string{"category"}, "measures": []string{"revenue"}}),
			step(registry.ParityCheck, map[string]any{"daysBack": 30}),
		},
	}

	res := New(ts).Execute(context.Background(), plan)
	if len(res.Artifacts) != 1 {
		t.Fatalf("expected execution to halt after SEMANTIC_QUERY failure, got %d artifacts", len(res.Artifacts))
	}
	if res.Success {
		t.Fatalf("overall success must be false")
	}
	if res.Reply.Type != ReplyError {
		t.Fatalf("expected error reply, got %s", res.Reply.Type)
	}
}

func TestReplyShapes(t *testing.T) {
	tests := []struct {
		tool   registry.Code
		params map[string]any
		want   ReplyType
	}{
		{registry.SemanticQuery, map[string]any{"dimensions": []string{"category"}, "measures": []string{"revenue"}}, ReplyTable},
		{registry.GeoExport, map[string]any{"level": "city", "metric": "revenue"}, ReplyMap},
		{registry.ParityCheck, map[string]any{"daysBack": 7}, ReplyReport},
		{registry.AutoSyncFlat, nil, ReplyStatus},
		{registry.CatalogQA, map[string]any{"question": "what is x?"}, ReplyAnswer},
	}
	exec := New(&stubToolSet{})
	for _, tt := range tests {
		t.Run(string(tt.tool), func(t *testing.T) {
			plan := &planner.Plan{Intent: "x", Steps: []planner.Step{step(tt.tool, tt.params)}}
			res := exec.Execute(context.Background(), plan)
			if !res.Success {
				t.Fatalf("expected success, got error %q", res.Error)
			}
			if res.Reply.Type != tt.want {
				t.Fatalf("expected reply type %s, got %s", tt.want, res.Reply.Type)
			}
		})
	}
}

func TestReplyPreservesWarnings(t *testing.T) {
	ts := &stubToolSet{
		parityFn: func(ctx context.Context, params tools.ParityParams) (*tools.ParityResult, error) {
			return &tools.ParityResult{Status: tools.StatusOK, DifferencePercent: 9.3}, nil
		},
	}
	plan := &planner.Plan{Intent: "x", Steps: []planner.Step{step(registry.ParityCheck, map[string]any{"daysBack": 30})}}

	res := New(ts).Execute(context.Background(), plan)
	if !res.Success {
		t.Fatalf("large difference is a warning, not a failure: %q", res.Error)
	}
	if len(res.Reply.Warnings) == 0 {
		t.Fatalf("expected the difference warning to survive into the reply")
	}
}

func TestGeoZeroFeaturesFailsVerification(t *testing.T) {
	ts := &stubToolSet{
		geoFn: func(ctx context.Context, params tools.GeoParams) (*tools.GeoResult, error) {
			return &tools.GeoResult{Features: []tools.GeoFeature{}}, nil
		},
	}
	plan := &planner.Plan{Intent: "x", Steps: []planner.Step{step(registry.GeoExport, map[string]any{"level": "city", "metric": "revenue"})}}

	res := New(ts).Execute(context.Background(), plan)
	a := res.Artifacts[0]
	if a.Verification == nil || a.Verification.Passed {
		t.Fatalf("zero features must fail verification")
	}
	if a.Success {
		t.Fatalf("step must be unsuccessful on failed critical verification")
	}
	if res.Success {
		t.Fatalf("overall execution must be unsuccessful")
	}
	if !strings.Contains(a.Error, "verification failed") {
		t.Fatalf("expected synthetic verification error, got %q", a.Error)
	}
}

func TestSemanticQueryFieldWarnings(t *testing.T) {
	ts := &stubToolSet{
		queryFn: func(ctx context.Context, params tools.QueryParams) (*tools.QueryResult, error) {
			return &tools.QueryResult{Data: []map[string]any{{"category": "snacks"}}, RowCount: 1}, nil
		},
	}
	plan := &planner.Plan{Intent: "x", Steps: []planner.Step{
		step(registry.SemanticQuery, map[string]any{"dimensions": []string{"category"}, "measures": []string{"revenue"}}),
	}}

	res := New(ts).Execute(context.Background(), plan)
	if !res.Success {
		t.Fatalf("missing field is a warning, not a failure")
	}
	a := res.Artifacts[0]
	if !a.HasWarnings() {
		t.Fatalf("expected a warning about the absent revenue field")
	}
}

func TestSyncInitiatedWithoutRunIDWarns(t *testing.T) {
	ts := &stubToolSet{
		syncFn: func(ctx context.Context) (*tools.SyncResult, error) {
			return &tools.SyncResult{Status: tools.StatusInitiated}, nil
		},
	}
	plan := &planner.Plan{Intent: "x", Steps: []planner.Step{step(registry.AutoSyncFlat, nil)}}

	res := New(ts).Execute(context.Background(), plan)
	if !res.Success {
		t.Fatalf("missing run id is a warning, not a failure")
	}
	if !res.Artifacts[0].HasWarnings() {
		t.Fatalf("expected run identifier warning")
	}
}

func TestCatalogShortAnswerNeverFails(t *testing.T) {
	ts := &stubToolSet{
		catalogFn: func(ctx context.Context, question string) (*tools.CatalogAnswer, error) {
			return &tools.CatalogAnswer{Answer: "n/a", Confidence: 0.2}, nil
		},
	}
	plan := &planner.Plan{Intent: "x", Steps: []planner.Step{step(registry.CatalogQA, map[string]any{"question": "?"})}}

	res := New(ts).Execute(context.Background(), plan)
	if !res.Success {
		t.Fatalf("catalog answers never fail verification")
	}
	if len(res.Artifacts[0].Verification.Warnings) != 2 {
		t.Fatalf("expected short-answer and low-confidence warnings, got %v", res.Artifacts[0].Verification.Warnings)
	}
}

func TestUnknownToolIsDispatchError(t *testing.T) {
	plan := &planner.Plan{Intent: "x", Steps: []planner.Step{step(registry.Code("MYSTERY"), map[string]any{"a": 1})}}

	res := New(&stubToolSet{}).Execute(context.Background(), plan)
	if res.Success {
		t.Fatalf("unknown tool must fail")
	}
	if !strings.Contains(res.Artifacts[0].Error, "unknown tool") {
		t.Fatalf("expected unknown tool error, got %q", res.Artifacts[0].Error)
	}
}

func TestEmptyPlan(t *testing.T) {
	res := New(&stubToolSet{}).Execute(context.Background(), &planner.Plan{Intent: "x"})
	if res.Success {
		t.Fatalf("empty plan must not succeed")
	}
	if res.Reply.Type != ReplyError {
		t.Fatalf("expected error reply, got %s", res.Reply.Type)
	}
}

func TestErrorReplyEnumeratesAllFailures(t *testing.T) {
	ts := &stubToolSet{
		parityFn: func(ctx context.Context, params tools.ParityParams) (*tools.ParityResult, error) {
			return nil, errors.New("parity down")
		},
		syncFn: func(ctx context.Context) (*tools.SyncResult, error) {
			return nil, errors.New("sync down")
		},
	}
	plan := &planner.Plan{Intent: "x", Steps: []planner.Step{
		step(registry.ParityCheck, map[string]any{"daysBack": 30}),
		step(registry.AutoSyncFlat, nil),
	}}

	res := New(ts).Execute(context.Background(), plan)
	if len(res.Artifacts) != 2 {
		t.Fatalf("both continuable steps should have been attempted")
	}
	if res.Reply.Type != ReplyError {
		t.Fatalf("expected error reply")
	}
	if len(res.Reply.Errors) != 2 {
		t.Fatalf("expected both errors enumerated, got %v", res.Reply.Errors)
	}
}
