package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
)

// FileBackend stores the knowledge base as one JSON document.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Path() string { return b.path }

// Load treats a missing file as an empty knowledge base.
func (b *FileBackend) Load(ctx context.Context) (*model.KnowledgeData, error) {
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewKnowledgeData(), nil
	}
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("failed to read %s", b.path), err)
	}

	var data model.KnowledgeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("failed to decode %s", b.path), err)
	}
	return data.Normalize(), nil
}

// Save writes a temp file next to the target and renames it over, so a
// crash mid-write leaves the previous document intact.
func (b *FileBackend) Save(ctx context.Context, data *model.KnowledgeData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return apperrors.NewStorageFailed(b.Name(), "failed to encode knowledge base", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("failed to create %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageFailed(b.Name(), "failed to create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStorageFailed(b.Name(), "failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageFailed(b.Name(), "failed to close temp file", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("failed to replace %s", b.path), err)
	}
	return nil
}

func (b *FileBackend) Close(ctx context.Context) error {
	return nil
}
