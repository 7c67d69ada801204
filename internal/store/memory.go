package store

import (
	"context"

	"github.com/agenthands/distill/internal/core/model"
)

// MemoryBackend keeps the knowledge base for the life of the process only.
type MemoryBackend struct {
	data *model.KnowledgeData
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Load(ctx context.Context) (*model.KnowledgeData, error) {
	return b.data.Clone(), nil
}

func (b *MemoryBackend) Save(ctx context.Context, data *model.KnowledgeData) error {
	b.data = data.Clone()
	return nil
}

func (b *MemoryBackend) Close(ctx context.Context) error {
	return nil
}
