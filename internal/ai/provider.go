package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one upstream completion call. MaxTokens and
// Temperature come from the conversation-phase parameters.
type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Provider streams assistant content chunks. Both returned channels
// are closed when streaming ends; at most one error is sent.
type Provider interface {
	StreamChat(ctx context.Context, req ChatRequest) (<-chan string, <-chan error)
}
