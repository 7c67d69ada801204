package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/extraction"
	"github.com/agenthands/distill/internal/core/merge"
	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
	"github.com/agenthands/distill/internal/store"
)

func cityStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.AddConcept(ctx, "Paris", model.Attributes{"type": "city"}))
	require.NoError(t, s.AddConcept(ctx, "Berlin", model.Attributes{"type": "city"}))
	require.NoError(t, s.AddRelationship(ctx, "Paris", "capital_of", "France"))
	require.NoError(t, s.AddRelationship(ctx, "Berlin", "larger_than", "Paris"))
	return s
}

func TestRetrieveFallsBackToSummary(t *testing.T) {
	e := NewEngine(llm.NewMockLLMClient("ok"), config.Default().Query)

	pkg := e.Retrieve("What is the tallest mountain?", cityStore(t))

	assert.False(t, pkg.Matched())
	assert.Equal(t, "Knowledge base contains 2 concepts and 2 relationships.", pkg.Summary)
	assert.LessOrEqual(t, len(pkg.SampleConcepts), model.SampleSize)
	assert.Equal(t, []string{"Paris", "Berlin"}, pkg.SampleConcepts)

	raw, err := json.Marshal(pkg)
	require.NoError(t, err)
	var shape map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &shape))
	assert.Contains(t, shape, "summary")
	assert.Contains(t, shape, "sample_concepts")
	assert.NotContains(t, shape, "concepts")
}

func TestRetrieveSampleIsCapped(t *testing.T) {
	s := store.NewMemory()
	for _, name := range []string{"A1", "B2", "C3", "D4", "E5", "F6", "G7"} {
		require.NoError(t, s.AddConcept(context.Background(), name, nil))
	}
	e := NewEngine(llm.NewMockLLMClient("ok"), config.Default().Query)

	pkg := e.Retrieve("nothing relevant", s)
	assert.Equal(t, []string{"A1", "B2", "C3", "D4", "E5"}, pkg.SampleConcepts)
}

func TestRetrieveMatchedConcepts(t *testing.T) {
	e := NewEngine(llm.NewMockLLMClient("ok"), config.Default().Query)

	pkg := e.Retrieve("Tell me about PARIS and berlin", cityStore(t))

	require.True(t, pkg.Matched())
	assert.Equal(t, []string{"Paris", "Berlin"}, model.ConceptNames(pkg.Concepts))
	// "Berlin larger_than Paris" touches both and is listed once per match
	assert.Len(t, pkg.Relationships, 3)
	assert.Empty(t, pkg.Summary)
}

func TestAnswer(t *testing.T) {
	mock := llm.NewMockLLMClient("Paris is the capital of France.")
	e := NewEngine(mock, config.Default().Query)

	answer, pkg, err := e.Answer(context.Background(), "What is Paris?", cityStore(t))
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", answer)
	assert.True(t, pkg.Matched())

	req := mock.LastRequest()
	assert.Equal(t, config.Default().Query.System, req.System)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "'What is Paris?'")
	assert.Contains(t, req.Messages[0].Content, `"capital_of"`)
}

func TestAnswerTransportFailure(t *testing.T) {
	e := NewEngine(&llm.MockLLMClient{Err: errors.New("timeout")}, config.Default().Query)

	answer, pkg, err := e.Answer(context.Background(), "What is Paris?", cityStore(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTransport))
	assert.Empty(t, answer)
	assert.True(t, pkg.Matched())
}

func TestNewEngineUnknownMatcher(t *testing.T) {
	prompts := config.Default().Query
	prompts.Matcher = "telepathy"
	e := NewEngine(llm.NewMockLLMClient(), prompts)

	assert.True(t, e.Match("concatenate", "cat"))
}

// TestPhotosynthesisScenario runs a conversation through extraction,
// merging and querying.
func TestPhotosynthesisScenario(t *testing.T) {
	ctx := context.Background()
	reply := `{"concepts":{"Photosynthesis":{"type":"process"}},"relationships":[{"source":"Plants","relation":"perform","target":"Photosynthesis"}]}`
	s := store.NewMemory()

	extractor := extraction.NewExtractor(llm.NewMockLLMClient(reply), config.Default().Extraction)
	result, err := extractor.Extract(ctx, "Photosynthesis converts sunlight into energy. Plants perform photosynthesis.")
	require.NoError(t, err)
	_, err = merge.Apply(ctx, result, s)
	require.NoError(t, err)

	attrs, ok := s.QueryConcept("Photosynthesis")
	require.True(t, ok)
	assert.Equal(t, model.Attributes{"type": "process"}, attrs)
	assert.Equal(t, 1, s.Stats().RelationshipCount)

	want := []model.Relationship{{Source: "Plants", Relation: "perform", Target: "Photosynthesis"}}

	// "photosynthesize" only shares a stem with the concept name
	prompts := config.Default().Query
	prompts.Matcher = "stem"
	stem := NewEngine(llm.NewMockLLMClient("Plants do."), prompts)
	answer, pkg, err := stem.Answer(ctx, "What plants photosynthesize?", s)
	require.NoError(t, err)
	assert.Equal(t, "Plants do.", answer)
	require.True(t, pkg.Matched())
	assert.Equal(t, []string{"Photosynthesis"}, model.ConceptNames(pkg.Concepts))
	assert.Equal(t, want, pkg.Relationships)

	// the default matcher needs the name itself
	substring := NewEngine(llm.NewMockLLMClient("Plants do."), config.Default().Query)
	pkg = substring.Retrieve("What plants perform photosynthesis?", s)
	require.True(t, pkg.Matched())
	assert.Equal(t, want, pkg.Relationships)
}
