package llm

import (
	"context"
	"fmt"
	"time"
)

// MockClient is a scriptable implementation of Client for testing.
type MockClient struct {
	// Responses are returned in order; the last one repeats.
	Responses []string
	// Err, if set, is returned by every call.
	Err error

	// Requests records every request received.
	Requests []*ChatCompletionRequest

	calls int
}

// NewMockClient creates a mock client that echoes the last user message.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// CreateChatCompletion returns the next scripted response.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}

	content := m.nextContent(req)
	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{
			{
				Index: 0,
				Message: &ChatMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
	}, nil
}

func (m *MockClient) nextContent(req *ChatCompletionRequest) string {
	if len(m.Responses) > 0 {
		i := m.calls
		if i >= len(m.Responses) {
			i = len(m.Responses) - 1
		}
		m.calls++
		return m.Responses[i]
	}

	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return "[MOCK] Received: " + req.Messages[i].Content
		}
	}
	return "[MOCK] This is a mock response."
}
