package main

import (
	"context"
	"fmt"

	"github.com/agenthands/distill/internal/app"
	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/logger"
)

// openApp loads the configuration named by --config and opens the store.
// The global logger is only built with --verbose (or by serve) so command
// output stays clean.
func openApp(ctx context.Context, forceLog bool) (*app.App, error) {
	cfg, err := config.LoadFromEnvironment(configPath)
	if err != nil {
		return nil, err
	}
	if verbose || forceLog {
		if err := logger.Init(cfg.Server.Env); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	return app.Open(ctx, cfg, logger.Get())
}

// openModelApp is openApp for commands that cannot run without a model.
func openModelApp(ctx context.Context) (*app.App, error) {
	a, err := openApp(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := a.RequireLLM(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("%w: set LLM_API_KEY or llm.api_key", err)
	}
	return a, nil
}
