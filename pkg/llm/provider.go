// Package llm abstracts the language-model dependency of the planner
// behind a narrow completion interface so tests can swap in a
// deterministic stub.
package llm

import "context"

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single unit of communication.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries one system-prompted completion call.
type CompletionRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system"`
	User        string  `json:"user"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Messages expands the request into chat messages.
func (r CompletionRequest) Messages() []Message {
	return []Message{
		{Role: RoleSystem, Content: r.System},
		{Role: RoleUser, Content: r.User},
	}
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the model's raw text answer.
type CompletionResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Provider defines the interface for interacting with LLM backends.
type Provider interface {
	// Complete sends one completion request and returns the raw text
	// response. Transient failures surface as errors; callers decide
	// whether to degrade.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
