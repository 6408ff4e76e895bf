// SPDX-License-Identifier: Apache-2.0

// Package audit records every handled request so pipeline behavior can
// be inspected after the fact: which intent was chosen, whether the
// planner degraded to rules, and how execution ended.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Event is one handled request.
type Event struct {
	SessionID  string    `json:"session_id"`
	Query      string    `json:"query"`
	Intent     string    `json:"intent"`
	Fallback   bool      `json:"fallback"`
	StepCount  int       `json:"step_count"`
	ReplyType  string    `json:"reply_type"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Plan       any       `json:"plan,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter limits audit queries.
type Filter struct {
	SessionID    string
	Intent       string
	FallbackOnly bool
	Limit        int
}

// Store persists pipeline audit events.
type Store interface {
	Record(ctx context.Context, event Event) error
	List(ctx context.Context, filter Filter) ([]Event, error)
}

// MemoryStore keeps audit events in memory.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryStore returns an in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends an audit event.
func (s *MemoryStore) Record(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns filtered audit events.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if filter.SessionID != "" && ev.SessionID != filter.SessionID {
			continue
		}
		if filter.Intent != "" && ev.Intent != filter.Intent {
			continue
		}
		if filter.FallbackOnly && !ev.Fallback {
			continue
		}
		out = append(out, ev)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// encodePlan marshals the recorded plan into JSON.
func encodePlan(plan any) ([]byte, error) {
	if plan == nil {
		return []byte("null"), nil
	}
	return json.Marshal(plan)
}

// decodePlan parses a JSON plan payload.
func decodePlan(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeTime keeps stored timestamps in UTC.
func normalizeTime(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return value.UTC()
}
