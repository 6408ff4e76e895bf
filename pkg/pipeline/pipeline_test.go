package pipeline

import (
	"context"
	"testing"

	"github.com/suqilabs/suqi/pkg/audit"
	"github.com/suqilabs/suqi/pkg/executor"
	"github.com/suqilabs/suqi/pkg/llm"
	"github.com/suqilabs/suqi/pkg/planner"
	"github.com/suqilabs/suqi/pkg/registry"
	"github.com/suqilabs/suqi/pkg/scorer"
	"github.com/suqilabs/suqi/pkg/tools"
)

// okToolSet answers every tool with a minimal well-formed payload.
type okToolSet struct{}

func (okToolSet) SemanticQuery(context.Context, tools.QueryParams) (*tools.QueryResult, error) {
	return &tools.QueryResult{
		Data:     []map[string]any{{"category": "snacks", "revenue": 10.0, "transactions": 2.0}},
		RowCount: 1,
	}, nil
}

func (okToolSet) GeoExport(context.Context, tools.GeoParams) (*tools.GeoResult, error) {
	return &tools.GeoResult{
		Features: []tools.GeoFeature{{
			Type:       "Feature",
			Geometry:   map[string]any{"type": "Point"},
			Properties: map[string]any{"city": "Cebu"},
		}},
		FeatureCount: 1,
	}, nil
}

func (okToolSet) ParityCheck(ctx context.Context, params tools.ParityParams) (*tools.ParityResult, error) {
	return &tools.ParityResult{Status: tools.StatusOK, DaysChecked: params.DaysBack}, nil
}

func (okToolSet) AutoSyncFlat(context.Context) (*tools.SyncResult, error) {
	return &tools.SyncResult{Status: tools.StatusInitiated, RunID: "run-9"}, nil
}

func (okToolSet) CatalogQA(context.Context, string) (*tools.CatalogAnswer, error) {
	return &tools.CatalogAnswer{Answer: "the canonical transaction identifier", Confidence: 0.9}, nil
}

func newTestPipeline(t *testing.T, provider llm.Provider, store audit.Store) *Pipeline {
	t.Helper()
	reg := registry.New()
	sc := scorer.New(reg)
	pl := planner.New(provider, sc, reg, planner.Options{Model: "test-model"})
	ex := executor.New(okToolSet{})
	return New(pl, ex, audit.NewRecorder(store), nil)
}

func TestHandleWithModelPlan(t *testing.T) {
	provider := &llm.MockProvider{
		Response: `{"intent":"category revenue breakdown","steps":[{"tool":"SEMANTIC_QUERY","params":{"dimensions":["category"],"measures":["revenue"]},"reason":"user asked for a breakdown"}],"confidence":0.9}`,
	}
	store := audit.NewMemoryStore()
	p := newTestPipeline(t, provider, store)

	resp := p.Handle(context.Background(), Request{Message: "show revenue by category"})
	if resp.Intent != "category revenue breakdown" {
		t.Fatalf("unexpected intent: %s", resp.Intent)
	}
	if resp.Plan.FallbackReason != "" {
		t.Fatalf("model path should not set a fallback reason: %s", resp.Plan.FallbackReason)
	}
	if !resp.Execution.Success {
		t.Fatalf("execution failed: %s", resp.Execution.Error)
	}
	if resp.Reply == nil || resp.Reply.Type != executor.ReplyTable {
		t.Fatalf("expected table reply, got %+v", resp.Reply)
	}
	if len(resp.Artifacts) != 1 || resp.Artifacts[0].Tool != "SEMANTIC_QUERY" {
		t.Fatalf("unexpected artifacts: %+v", resp.Artifacts)
	}
	if resp.SessionID == "" {
		t.Fatalf("expected a generated session id")
	}
	if resp.Timestamp.IsZero() {
		t.Fatalf("expected a timestamp")
	}

	p.Flush()
	events, err := store.List(context.Background(), audit.Filter{SessionID: resp.SessionID})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	if events[0].Intent != resp.Intent || !events[0].Success {
		t.Fatalf("audit event does not match response: %+v", events[0])
	}
}

func TestHandleDegradesToFallback(t *testing.T) {
	store := audit.NewMemoryStore()
	p := newTestPipeline(t, &llm.FailingMockProvider{}, store)

	resp := p.Handle(context.Background(), Request{Message: "map revenue by region"})
	if resp.Plan.FallbackReason == "" {
		t.Fatalf("expected a fallback reason")
	}
	if len(resp.Plan.Steps) == 0 {
		t.Fatalf("fallback must still produce steps")
	}
	if resp.Plan.Steps[0].Tool != registry.GeoExport {
		t.Fatalf("geographic query should fall back to GEO_EXPORT, got %s", resp.Plan.Steps[0].Tool)
	}
	if !resp.Execution.Success {
		t.Fatalf("execution failed: %s", resp.Execution.Error)
	}

	p.Flush()
	events, _ := store.List(context.Background(), audit.Filter{FallbackOnly: true})
	if len(events) != 1 {
		t.Fatalf("expected the fallback to be audited, got %d events", len(events))
	}
}

func TestHandleKeepsCallerSessionID(t *testing.T) {
	p := newTestPipeline(t, nil, audit.NewMemoryStore())

	resp := p.Handle(context.Background(), Request{Message: "anything", SessionID: "sess-keep"})
	if resp.SessionID != "sess-keep" {
		t.Fatalf("caller session id was replaced: %s", resp.SessionID)
	}
}

func TestHandleNeverErrors(t *testing.T) {
	p := newTestPipeline(t, nil, audit.NewMemoryStore())

	for _, query := range []string{"", "asdf qwerty", "???", "show revenue"} {
		resp := p.Handle(context.Background(), Request{Message: query})
		if resp == nil {
			t.Fatalf("nil response for query %q", query)
		}
		if resp.Reply == nil {
			t.Fatalf("nil reply for query %q", query)
		}
		if len(resp.Plan.Steps) == 0 {
			t.Fatalf("no steps planned for query %q", query)
		}
	}
}
