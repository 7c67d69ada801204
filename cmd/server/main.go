package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/app"
	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/logger"
	"github.com/agenthands/distill/internal/server"
)

func main() {
	cfg, err := config.LoadFromEnvironment("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...", zap.String("backend", cfg.Store.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize", zap.Error(err))
	}
	defer a.Close(context.Background())

	srv := server.NewServer(server.Dependencies{
		Config:      a.Config,
		Store:       a.Store,
		LLM:         a.LLM,
		Transcriber: a.Transcriber,
		Synthesizer: a.Synthesizer,
		Logger:      log,
	})
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		log.Error("Server stopped", zap.Error(err))
	}
	log.Info("Server exited")
}
