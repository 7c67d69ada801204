package main

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/agenthands/distill/internal/core/query"
	"github.com/agenthands/distill/internal/mcp"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the knowledge base as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE:  runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	var engine *query.Engine
	if a.LLM != nil {
		engine = query.NewEngine(a.LLM, a.Config.Query)
	}

	server := mcp.NewServer(a.Store, engine, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
