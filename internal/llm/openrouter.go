package llm

import (
	"context"
	"fmt"

	openrouter "github.com/revrost/go-openrouter"

	apperrors "github.com/agenthands/distill/internal/errors"
)

type OpenRouterClient struct {
	client *openrouter.Client
	model  string
}

func NewOpenRouterClient(apiKey string, model string) *OpenRouterClient {
	return &OpenRouterClient{
		client: openrouter.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenRouterClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return "", apperrors.NewTransportFailed("openrouter completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewTransportFailed("openrouter completion", fmt.Errorf("no completion choices returned"))
	}
	return resp.Choices[0].Message.Content.Text, nil
}

func (c *OpenRouterClient) buildRequest(req Request) openrouter.ChatCompletionRequest {
	messages := make([]openrouter.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleSystem,
			Content: openrouter.Content{Text: req.System},
		})
	}
	for _, m := range req.Messages {
		role := openrouter.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openrouter.ChatMessageRoleAssistant
		}
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    role,
			Content: openrouter.Content{Text: m.Content},
		})
	}

	return openrouter.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
}
