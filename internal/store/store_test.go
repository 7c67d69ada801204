package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
)

type backendFactory func(t *testing.T) Backend

func localBackends() map[string]backendFactory {
	return map[string]backendFactory{
		"memory": func(t *testing.T) Backend { return NewMemoryBackend() },
		"file": func(t *testing.T) Backend {
			return NewFileBackend(filepath.Join(t.TempDir(), "kb.json"))
		},
		"sqlite": func(t *testing.T) Backend {
			b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "kb.db"), "test")
			require.NoError(t, err)
			t.Cleanup(func() { b.Close(context.Background()) })
			return b
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s *Store, b Backend)) {
	for name, factory := range localBackends() {
		t.Run(name, func(t *testing.T) {
			b := factory(t)
			s, err := New(context.Background(), b)
			require.NoError(t, err)
			fn(t, s, b)
		})
	}
}

func TestAddRelationshipIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store, _ Backend) {
		ctx := context.Background()
		require.NoError(t, s.AddRelationship(ctx, "Plants", "perform", "Photosynthesis"))
		before := s.Export().Relationships

		require.NoError(t, s.AddRelationship(ctx, "Plants", "perform", "Photosynthesis"))
		after := s.Export().Relationships

		assert.Len(t, after, 1)
		assert.Equal(t, before, after)
	})
}

func TestAddConceptReplacesWholesale(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store, _ Backend) {
		ctx := context.Background()
		require.NoError(t, s.AddConcept(ctx, "X", model.Attributes{"a": "1", "b": "2"}))
		require.NoError(t, s.AddConcept(ctx, "X", model.Attributes{"c": "3"}))

		attrs, ok := s.QueryConcept("X")
		require.True(t, ok)
		assert.Equal(t, model.Attributes{"c": "3"}, attrs)
		assert.Equal(t, 1, s.Stats().ConceptCount)
	})
}

func TestQueryRelationshipsBothEnds(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store, _ Backend) {
		ctx := context.Background()
		require.NoError(t, s.AddRelationship(ctx, "S", "R", "T"))
		require.NoError(t, s.AddRelationship(ctx, "T", "R2", "U"))
		require.NoError(t, s.AddRelationship(ctx, "Loop", "is", "Loop"))

		triple := model.Relationship{Source: "S", Relation: "R", Target: "T"}
		assert.Contains(t, s.QueryRelationships("S"), triple)
		assert.Contains(t, s.QueryRelationships("T"), triple)
		assert.Len(t, s.QueryRelationships("T"), 2)
		assert.Len(t, s.QueryRelationships("Loop"), 1)
		assert.Empty(t, s.QueryRelationships("nobody"))
	})
}

func TestQueryConceptNotFound(t *testing.T) {
	s := NewMemory()
	attrs, ok := s.QueryConcept("missing")
	assert.False(t, ok)
	assert.Nil(t, attrs)
}

func TestQueryConceptReturnsCopy(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.AddConcept(context.Background(), "X", model.Attributes{"k": "v"}))

	attrs, _ := s.QueryConcept("X")
	attrs["k"] = "changed"

	again, _ := s.QueryConcept("X")
	assert.Equal(t, "v", again["k"])
}

func TestQueryByAttribute(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store, b Backend) {
		ctx := context.Background()
		require.NoError(t, s.AddConcept(ctx, "Paris", model.Attributes{"type": "city", "population": 2100000}))
		require.NoError(t, s.AddConcept(ctx, "Berlin", model.Attributes{"type": "city"}))
		require.NoError(t, s.AddConcept(ctx, "Photosynthesis", model.Attributes{"type": "process"}))

		assert.Equal(t, []string{"Paris", "Berlin"}, s.QueryByAttribute("type", "city"))
		assert.Equal(t, []string{}, s.QueryByAttribute("type", "City"))

		// numbers compare by value after a reload turns them into float64
		reloaded, err := New(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []string{"Paris"}, reloaded.QueryByAttribute("population", 2100000))
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store, _ Backend) {
		ctx := context.Background()
		require.NoError(t, s.AddConcept(ctx, "Zebra", model.Attributes{"kind": "animal"}))
		require.NoError(t, s.AddConcept(ctx, "Apple", model.Attributes{"kind": "fruit"}))
		require.NoError(t, s.AddRelationship(ctx, "Zebra", "eats", "Apple"))

		exported := s.Export()
		require.NoError(t, s.Import(ctx, exported))

		assert.Equal(t, exported.Stats(), s.Stats())
		assert.Equal(t, []string{"Zebra", "Apple"}, s.ConceptNames())
		assert.Equal(t, exported.Relationships, s.Export().Relationships)
		attrs, _ := s.QueryConcept("Zebra")
		assert.Equal(t, model.Attributes{"kind": "animal"}, attrs)
	})
}

func TestExportIsSnapshot(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.AddConcept(ctx, "A", model.Attributes{}))

	snap := s.Export()
	require.NoError(t, s.AddConcept(ctx, "B", model.Attributes{}))

	assert.Equal(t, 1, snap.Concepts.Len())
	assert.Equal(t, 2, s.Stats().ConceptCount)
}

func TestWriteThroughSurvivesReload(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store, b Backend) {
		ctx := context.Background()
		require.NoError(t, s.AddConcept(ctx, "Photosynthesis", model.Attributes{"type": "process"}))
		require.NoError(t, s.AddRelationship(ctx, "Plants", "perform", "Photosynthesis"))

		reloaded, err := New(ctx, b)
		require.NoError(t, err)
		attrs, ok := reloaded.QueryConcept("Photosynthesis")
		require.True(t, ok)
		assert.Equal(t, model.Attributes{"type": "process"}, attrs)
		assert.Equal(t, []model.Relationship{{Source: "Plants", Relation: "perform", Target: "Photosynthesis"}}, reloaded.Export().Relationships)
	})
}

func TestRelationshipMayReferenceUnknownConcepts(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.AddRelationship(context.Background(), "Ghost", "haunts", "House"))

	assert.Equal(t, model.Stats{ConceptCount: 0, RelationshipCount: 1}, s.Stats())
}

func TestFileBackendMissingFileIsEmpty(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "nested", "kb.json"))
	data, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Stats{}, data.Stats())

	require.NoError(t, b.Save(context.Background(), data))
	raw, err := os.ReadFile(b.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"concepts":{},"relationships":[]}`, string(raw))
}

func TestFileBackendDocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	s, err := New(context.Background(), NewFileBackend(path))
	require.NoError(t, err)
	require.NoError(t, s.AddConcept(context.Background(), "Paris", model.Attributes{"type": "city"}))
	require.NoError(t, s.AddRelationship(context.Background(), "Paris", "capital_of", "France"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"concepts": {"Paris": {"type": "city"}},
		"relationships": [{"source": "Paris", "relation": "capital_of", "target": "France"}]
	}`, string(raw))
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(context.Background(), NewFileBackend(path))
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStorage))
}

type failingBackend struct {
	MemoryBackend
}

func (f *failingBackend) Save(ctx context.Context, data *model.KnowledgeData) error {
	return apperrors.NewStorageFailed("failing", "disk full", errors.New("ENOSPC"))
}

func TestPersistFailureIsReported(t *testing.T) {
	s, err := New(context.Background(), &failingBackend{})
	require.NoError(t, err)

	err = s.AddConcept(context.Background(), "A", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStorage))

	// the in-memory state still changed
	attrs, ok := s.QueryConcept("A")
	assert.True(t, ok)
	assert.Equal(t, model.Attributes{}, attrs)
}

func TestNewBackendFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	cfg.Store.Backend = "memory"
	b, err := NewBackend(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "memory", b.Name())

	cfg.Store.Backend = "file"
	cfg.Store.Path = filepath.Join(t.TempDir(), "kb.json")
	b, err = NewBackend(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "file", b.Name())

	cfg.Store.Backend = "sqlite"
	cfg.Store.Path = filepath.Join(t.TempDir(), "kb.db")
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Backend())
	require.NoError(t, s.Close(ctx))

	cfg.Store.Backend = "mongo"
	_, err = NewBackend(ctx, cfg)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}
