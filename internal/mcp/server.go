package mcp

import (
	"context"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agenthands/distill/internal/core/query"
	"github.com/agenthands/distill/internal/store"
)

// Server exposes the knowledge base as MCP tools. The ask tool is only
// registered when a query engine is supplied.
type Server struct {
	mu     sync.Mutex
	store  *store.Store
	engine *query.Engine
	mcp    *sdk.Server
}

func NewServer(st *store.Store, engine *query.Engine, version string) *Server {
	s := &Server{
		store:  st,
		engine: engine,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "distill",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
