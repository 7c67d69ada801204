package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agenthands/distill/internal/logger"
	"github.com/agenthands/distill/internal/server"
)

var servePort string

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	defer logger.Sync()

	port := a.Config.Server.Port
	if servePort != "" {
		port = servePort
	}

	srv := server.NewServer(server.Dependencies{
		Config:      a.Config,
		Store:       a.Store,
		LLM:         a.LLM,
		Transcriber: a.Transcriber,
		Synthesizer: a.Synthesizer,
		Logger:      a.Logger,
	})
	return srv.Run(ctx, port)
}
