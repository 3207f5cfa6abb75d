package domain

import (
	"fmt"
	"net/http"
)

// Message is a single chat message sent to an LLM provider.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a fully assembled prompt.
type CompletionRequest struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int

	// Context carries the raw retrieved passages for providers that answer
	// extractively instead of calling a model.
	Context []string
	Query   string
}

// ProviderError wraps a failure returned by an external model provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError classifies a failure by HTTP status. Rate limits and
// server errors are retryable, other client errors are not. A zero status
// means a transport failure, which is retryable.
func NewProviderError(provider string, status int, err error) *ProviderError {
	retryable := status == 0 || status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout || status >= http.StatusInternalServerError
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Retryable:  retryable,
		Err:        err,
	}
}
