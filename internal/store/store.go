package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/core/model"
	"github.com/agenthands/distill/internal/logger"
)

// Backend persists a whole knowledge base. Load of a backend that has
// never been saved returns an empty knowledge base, not an error.
type Backend interface {
	Name() string
	Load(ctx context.Context) (*model.KnowledgeData, error)
	Save(ctx context.Context, data *model.KnowledgeData) error
	Close(ctx context.Context) error
}

// Store is the knowledge base aggregate. Every mutation is written through
// to the backend before returning. Store is not safe for concurrent use;
// callers serialize access.
type Store struct {
	backend Backend
	data    *model.KnowledgeData
	logger  *zap.Logger
}

// New loads the current state from backend.
func New(ctx context.Context, backend Backend) (*Store, error) {
	data, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	s := &Store{
		backend: backend,
		data:    data.Normalize(),
		logger:  logger.Get(),
	}
	s.logger.Info("Knowledge base loaded",
		zap.String("backend", backend.Name()),
		zap.Int("concepts", s.data.Concepts.Len()),
		zap.Int("relationships", len(s.data.Relationships)),
	)
	return s, nil
}

// NewMemory is a store with nothing behind it but process memory.
func NewMemory() *Store {
	s, _ := New(context.Background(), NewMemoryBackend())
	return s
}

func (s *Store) Backend() string {
	return s.backend.Name()
}

// AddConcept inserts name or replaces its attributes wholesale. The
// in-memory state changes even when the write fails.
func (s *Store) AddConcept(ctx context.Context, name string, attributes model.Attributes) error {
	attrs := model.CloneAttributes(attributes)
	if attrs == nil {
		attrs = model.Attributes{}
	}
	s.data.Concepts.Set(name, attrs)
	return s.persist(ctx)
}

// AddRelationship appends the triple unless an identical one exists, in
// which case nothing happens and nothing is written.
func (s *Store) AddRelationship(ctx context.Context, source, relation, target string) error {
	rel := model.Relationship{Source: source, Relation: relation, Target: target}
	if model.ContainsRelationship(s.data.Relationships, rel) {
		return nil
	}
	s.data.Relationships = append(s.data.Relationships, rel)
	return s.persist(ctx)
}

// QueryConcept returns a copy of the attributes of name.
func (s *Store) QueryConcept(name string) (model.Attributes, bool) {
	attrs, ok := s.data.Concepts.Get(name)
	if !ok {
		return nil, false
	}
	return model.CloneAttributes(attrs), true
}

// QueryRelationships returns, in list order, every relationship with
// concept at either end.
func (s *Store) QueryRelationships(concept string) []model.Relationship {
	out := []model.Relationship{}
	for _, rel := range s.data.Relationships {
		if rel.Touches(concept) {
			out = append(out, rel)
		}
	}
	return out
}

// QueryByAttribute returns the names of concepts whose attribute equals
// value.
func (s *Store) QueryByAttribute(attribute string, value interface{}) []string {
	out := []string{}
	for pair := s.data.Concepts.Oldest(); pair != nil; pair = pair.Next() {
		v, ok := pair.Value[attribute]
		if ok && model.ValuesEqual(v, value) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// ConceptNames lists every concept in store order.
func (s *Store) ConceptNames() []string {
	return model.ConceptNames(s.data.Concepts)
}

func (s *Store) Stats() model.Stats {
	return s.data.Stats()
}

// Export returns a deep copy of the knowledge base.
func (s *Store) Export() *model.KnowledgeData {
	return s.data.Clone()
}

// Import replaces the whole knowledge base with data and persists it. The
// shape of data is not checked beyond filling missing parts.
func (s *Store) Import(ctx context.Context, data *model.KnowledgeData) error {
	s.data = data.Clone().Normalize()
	return s.persist(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.data); err != nil {
		s.logger.Error("Failed to persist knowledge base", zap.String("backend", s.backend.Name()), zap.Error(err))
		return err
	}
	return nil
}
