// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("connection refused")
	se := New(CodeToolFailure, "semantic query dispatch failed", cause)

	if se.Code != CodeToolFailure {
		t.Errorf("expected CodeToolFailure, got %v", se.Code)
	}
	if se.Message != "semantic query dispatch failed" {
		t.Errorf("unexpected message %q", se.Message)
	}
	if !errors.Is(se, cause) {
		t.Errorf("expected errors.Is to traverse the wrapped cause")
	}
}

func TestWithContext(t *testing.T) {
	se := New(CodeVerificationFailed, "empty feature collection", nil)
	se.WithContext("tool", "GEO_EXPORT").WithContext("feature_count", 0)

	if se.Context["tool"] != "GEO_EXPORT" {
		t.Errorf("expected context tool to be GEO_EXPORT")
	}
	if se.Context["feature_count"] != 0 {
		t.Errorf("expected context feature_count to be 0")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		se       *SuqiError
		expected string
	}{
		{
			name:     "with cause",
			se:       New(CodeLLMError, "completion failed", errors.New("status 503")),
			expected: "[LLM_ERROR] completion failed: status 503",
		},
		{
			name:     "without cause",
			se:       New(CodeInvalidInput, "message is required", nil),
			expected: "[INVALID_INPUT] message is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.se.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStatusCodeMapping(t *testing.T) {
	if New(CodeInvalidInput, "bad", nil).StatusCode != 400 {
		t.Errorf("expected 400 for invalid input")
	}
	if New(CodeNotFound, "missing", nil).StatusCode != 404 {
		t.Errorf("expected 404 for not found")
	}
	if New(CodeToolFailure, "boom", nil).StatusCode != 500 {
		t.Errorf("expected 500 for tool failure")
	}
}

func TestAsSuqiError(t *testing.T) {
	se := New(CodeNotFound, "capability not found", nil)
	if AsSuqiError(se) != se {
		t.Errorf("expected identity for SuqiError")
	}
	wrapped := AsSuqiError(errors.New("plain"))
	if wrapped.Code != CodeInternal {
		t.Errorf("expected plain errors to wrap as internal, got %v", wrapped.Code)
	}
	if AsSuqiError(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
}

func TestMarshalJSON(t *testing.T) {
	se := New(CodeToolFailure, "dispatch failed", errors.New("timeout")).
		WithContext("tool", "PARITY_CHECK").
		WithRecoverable(true)

	data, err := json.Marshal(se)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["code"] != "TOOL_FAILURE" {
		t.Errorf("expected code TOOL_FAILURE, got %v", decoded["code"])
	}
	if decoded["recoverable"] != true {
		t.Errorf("expected recoverable true")
	}
}
