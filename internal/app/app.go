// Package app wires configuration into the running collaborators shared by
// the HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/audio"
	"github.com/agenthands/distill/internal/config"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
	"github.com/agenthands/distill/internal/logger"
	"github.com/agenthands/distill/internal/store"
)

// App holds what a surface needs. LLM, Transcriber and Synthesizer are nil
// when no credential is configured.
type App struct {
	Config      *config.Config
	Store       *store.Store
	LLM         llm.LLMClient
	Transcriber audio.Transcriber
	Synthesizer audio.Synthesizer
	Logger      *zap.Logger
}

// Open validates cfg, opens the store and builds the model clients. A
// missing model credential is logged and leaves the model fields nil.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.Or(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Store: st, Logger: log}

	if err := cfg.ValidateLLM(); err != nil {
		var missing *apperrors.ErrConfigMissingRequired
		if !errors.As(err, &missing) {
			st.Close(ctx)
			return nil, err
		}
		log.Warn("Model operations disabled", zap.String("missing", missing.Field))
		return a, nil
	}

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		st.Close(ctx)
		return nil, err
	}
	a.LLM = client
	a.Transcriber, a.Synthesizer = openAudio(cfg, client)
	if a.Transcriber == nil {
		log.Info("Voice input disabled: no OpenAI credential")
	}
	return a, nil
}

// openAudio reuses the chat client when it already talks to OpenAI and
// otherwise falls back to OPENAI_API_KEY.
func openAudio(cfg *config.Config, client llm.LLMClient) (audio.Transcriber, audio.Synthesizer) {
	var oc *openai.Client
	if c, ok := client.(*llm.OpenAIClient); ok && strings.ToLower(cfg.LLM.Provider) == "openai" {
		oc = c.Client()
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		oc = openai.NewClient(key)
	}
	if oc == nil {
		return nil, nil
	}
	t, s := audio.NewOpenAI(oc, cfg.Audio)
	return t, s
}

// RequireLLM returns ErrNoCredentials when the model client is missing.
func (a *App) RequireLLM() error {
	if a.LLM == nil {
		return apperrors.ErrNoCredentials
	}
	return nil
}

// Close closes the store and any client holding a connection.
func (a *App) Close(ctx context.Context) error {
	if closer, ok := a.LLM.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn("Failed to close model client", zap.Error(err))
		}
	}
	return a.Store.Close(ctx)
}
