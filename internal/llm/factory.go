package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/config"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/logger"
)

const defaultOllamaURL = "http://localhost:11434"

// NewClient builds the chat client for cfg.Provider. Callers should run
// cfg.ValidateLLM first; a missing key is not checked again here.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "claude", "anthropic":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "openrouter":
		return NewOpenRouterClient(cfg.APIKey, cfg.Model), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		logger.Get().Info("Initializing Ollama via OpenAI-compatible API", zap.String("base_url", baseURL))

		// Ollama ignores the key but the client wants one.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, apperrors.NewBaseError(apperrors.ErrorTypeConfig, fmt.Sprintf("unsupported llm provider: %s", provider), nil)
	}
}
