package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/driver"
	apperrors "github.com/agenthands/distill/internal/errors"
)

// NewBackend builds the backend named by cfg.Store.Backend.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	kb := cfg.Store.KnowledgeBase
	if kb == "" {
		kb = "default"
	}

	switch strings.ToLower(cfg.Store.Backend) {
	case "memory":
		return NewMemoryBackend(), nil
	case "file", "":
		return NewFileBackend(cfg.Store.Path), nil
	case "sqlite":
		b, err := NewSQLiteBackend(cfg.Store.Path, kb)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "postgres":
		b, err := NewPostgresBackend(ctx, cfg.Store.DSN, kb)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memgraph":
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return nil, apperrors.NewStorageFailed("memgraph", "connecting", err)
		}
		b, err := NewMemgraphBackend(ctx, d, kb)
		if err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		return b, nil
	default:
		return nil, apperrors.NewBaseError(apperrors.ErrorTypeConfig, fmt.Sprintf("unknown store backend: %s", cfg.Store.Backend), nil)
	}
}

// Open builds the configured backend and loads the store from it.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, backend)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, err
	}
	return s, nil
}
