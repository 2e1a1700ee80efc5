package ai

import "context"

// Backend is the interface that all completion APIs must implement.
type Backend interface {
	Complete(ctx context.Context, token string, req CompletionRequest) (string, error)
	Name() string // "chat" or "responses"
}

// CompletionRequest is a backend-agnostic single-turn request.
type CompletionRequest struct {
	Model             string
	System            string
	User              string
	MaxTokens         int
	RepetitionPenalty float64
}
