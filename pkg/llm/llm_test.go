package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompletionRequestMessages(t *testing.T) {
	req := CompletionRequest{System: "you are a planner", User: "show revenue"}
	msgs := req.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleSystem || msgs[1].Role != RoleUser {
		t.Fatalf("unexpected roles: %+v", msgs)
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(ollamaResponse{
			Message:         ollamaMessage{Role: "assistant", Content: `{"intent":"test"}`},
			Done:            true,
			EvalCount:       5,
			PromptEvalCount: 7,
		})
	}))
	defer srv.Close()

	p := NewOllama(srv.URL)
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Model:  "llama3",
		System: "plan",
		User:   "query",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != `{"intent":"test"}` {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}

func TestOllamaCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOllama(srv.URL)
	if _, err := p.Complete(context.Background(), CompletionRequest{Model: "llama3"}); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestMockProviderRecordsRequests(t *testing.T) {
	m := &MockProvider{Response: "ok"}
	resp, err := m.Complete(context.Background(), CompletionRequest{User: "hello"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != "ok" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if len(m.Requests) != 1 || m.Requests[0].User != "hello" {
		t.Fatalf("expected request to be recorded, got %+v", m.Requests)
	}
}

func TestFailingMockProvider(t *testing.T) {
	f := &FailingMockProvider{Err: errors.New("down")}
	if _, err := f.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatalf("expected error")
	}
}
