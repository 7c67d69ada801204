package llm

import (
	"context"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one model call: an optional system prompt and an ordered
// user/assistant history. MaxTokens of zero leaves the provider default.
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// SingleTurn builds the common system + one user message request.
func SingleTurn(system, user string, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: user}},
		MaxTokens: maxTokens,
	}
}

// LLMClient sends a request and returns the reply text. Failures are
// reported as transport errors.
type LLMClient interface {
	Generate(ctx context.Context, req Request) (string, error)
}
