// Package llm provides an abstraction for chat-style LLM API clients.
package llm

import (
	"context"
	"errors"
)

// ErrDisabled is returned when no API key is configured. Callers that need a
// turn regardless (the generator) treat it like any other upstream failure.
var ErrDisabled = errors.New("llm client disabled: no api key configured")

// Client defines the interface for chat completion calls. The collaborator
// keeps no conversational state; callers resend the full history each turn.
type Client interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Ensure implementations satisfy the interface.
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
	_ Client = (*DisabledClient)(nil)
)
