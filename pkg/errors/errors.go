// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling for the Suqi pipeline.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Suqi errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the inbound request was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeToolFailure indicates a tool dispatch failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeVerificationFailed indicates a tool returned but its output failed
	// post-hoc verification.
	CodeVerificationFailed ErrorCode = "VERIFICATION_FAILED"

	// CodeLLMError indicates the planning model was unreachable or misbehaved.
	CodeLLMError ErrorCode = "LLM_ERROR"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// SuqiError is a typed error with context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type SuqiError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]any
	Recoverable bool
	StatusCode  int
}

// Error implements the error interface.
func (e *SuqiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *SuqiError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *SuqiError) MarshalJSON() ([]byte, error) {
	payload := struct {
		Message     string         `json:"message"`
		Code        string         `json:"code"`
		Recoverable bool           `json:"recoverable"`
		Context     map[string]any `json:"context,omitempty"`
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Recoverable: e.Recoverable,
		Context:     e.Context,
	}
	return json.Marshal(payload)
}

// New creates a new SuqiError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *SuqiError {
	return &SuqiError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *SuqiError) WithContext(key string, value any) *SuqiError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *SuqiError) WithRecoverable(recoverable bool) *SuqiError {
	e.Recoverable = recoverable
	return e
}

// AsSuqiError attempts to convert an error to a SuqiError.
// Returns the error as SuqiError if it is one, or wraps it otherwise.
func AsSuqiError(err error) *SuqiError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SuqiError); ok {
		return se
	}
	return New(CodeInternal, "wrapped error", err)
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeInvalidInput:
		return 400
	default:
		return 500
	}
}
