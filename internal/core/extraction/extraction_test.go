package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
)

const photosynthesisJSON = `{"concepts":{"Photosynthesis":{"type":"process"}},"relationships":[{"source":"Plants","relation":"perform","target":"Photosynthesis"}]}`

func newTestExtractor(mock *llm.MockLLMClient) *Extractor {
	return NewExtractor(mock, config.Default().Extraction)
}

// TestExtract ensures the reply is parsed into concepts and relationships
// and that the conversation text reaches the model verbatim.
func TestExtract(t *testing.T) {
	mock := llm.NewMockLLMClient(photosynthesisJSON)
	extractor := newTestExtractor(mock)

	text := "Photosynthesis converts sunlight into energy. Plants perform photosynthesis."
	result, err := extractor.Extract(context.Background(), text)

	require.NoError(t, err)
	attrs, ok := result.Concepts.Get("Photosynthesis")
	require.True(t, ok)
	assert.Equal(t, model.Attributes{"type": "process"}, attrs)
	require.Len(t, result.Relationships, 1)

	req := mock.LastRequest()
	assert.Equal(t, config.Default().Extraction.System, req.System)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, text)
}

func TestExtractFencedReply(t *testing.T) {
	reply := "Here is the knowledge:\n```json\n" + photosynthesisJSON + "\n```"
	result, err := newTestExtractor(llm.NewMockLLMClient(reply)).Extract(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Concepts.Len())
}

func TestExtractMissingKeysAreFilled(t *testing.T) {
	result, err := newTestExtractor(llm.NewMockLLMClient(`{"concepts":{"A":{}}}`)).Extract(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Concepts.Len())
	assert.NotNil(t, result.Relationships)
	assert.Empty(t, result.Relationships)
}

// TestExtractNoJSONDegrades covers a reply with no braces at all.
func TestExtractNoJSONDegrades(t *testing.T) {
	reply := "I'm sorry, I could not identify any concepts."
	result, err := newTestExtractor(llm.NewMockLLMClient(reply)).Extract(context.Background(), "hello")

	require.NotNil(t, result)
	assert.True(t, result.IsEmpty())
	assert.NotNil(t, result.Concepts)
	assert.NotNil(t, result.Relationships)

	require.Error(t, err)
	assert.True(t, apperrors.IsRecoverable(err))
	var parseErr *apperrors.ErrParseFailed
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, reply, parseErr.Reply)
}

func TestExtractTransportFailureDegrades(t *testing.T) {
	mock := &llm.MockLLMClient{Err: errors.New("connection refused")}
	result, err := newTestExtractor(mock).Extract(context.Background(), "hello")

	require.NotNil(t, result)
	assert.True(t, result.IsEmpty())
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTransport))
}

func TestExtractEmptyTextSkipsModel(t *testing.T) {
	mock := llm.NewMockLLMClient(photosynthesisJSON)
	result, err := newTestExtractor(mock).Extract(context.Background(), "   ")

	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
	assert.Equal(t, 0, mock.Calls())
}

// TestParseResultSkipsMalformedItems checks that one bad concept or
// relationship does not cost the rest of the reply.
func TestParseResultSkipsMalformedItems(t *testing.T) {
	tests := []struct {
		name          string
		reply         string
		concepts      []string
		triples       []model.Relationship
		relationships int
	}{
		{
			name:          "array triple",
			reply:         `{"concepts":{"Photosynthesis":{"type":"process"}},"relationships":[["Plants","perform","Photosynthesis"],{"source":"Plants","relation":"need","target":"Light"}]}`,
			concepts:      []string{"Photosynthesis"},
			triples:       []model.Relationship{{Source: "Plants", Relation: "need", Target: "Light"}},
			relationships: 2,
		},
		{
			name:          "prose relationship",
			reply:         `{"concepts":{"Water":{}},"relationships":["Water is wet"]}`,
			concepts:      []string{"Water"},
			relationships: 1,
		},
		{
			name:          "null relationship",
			reply:         "```json\n{\"concepts\":{},\"relationships\":[null,{\"source\":\"A\",\"relation\":\"r\",\"target\":\"B\"}]}\n```",
			concepts:      []string{},
			triples:       []model.Relationship{{Source: "A", Relation: "r", Target: "B"}},
			relationships: 2,
		},
		{
			name:          "non-object attributes",
			reply:         `{"concepts":{"A":"not an object","B":{"kind":"x"},"C":42},"relationships":[]}`,
			concepts:      []string{"B"},
			relationships: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResult(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.concepts, model.ConceptNames(result.Concepts))
			assert.Len(t, result.Relationships, tt.relationships)

			var triples []model.Relationship
			for _, raw := range result.Relationships {
				if rel, ok := raw.Triple(); ok {
					triples = append(triples, rel)
				}
			}
			assert.Equal(t, tt.triples, triples)
		})
	}
}

func TestParseResultRejectsWrongDocumentShape(t *testing.T) {
	result, err := ParseResult(`{"concepts":["A","B"],"relationships":[]}`)

	require.Error(t, err)
	assert.True(t, apperrors.IsRecoverable(err))
	assert.True(t, result.IsEmpty())
	assert.NotNil(t, result.Concepts)
}

func FuzzParseResult(f *testing.F) {
	f.Add(photosynthesisJSON)
	f.Add("```json\n" + photosynthesisJSON + "\n```")
	f.Add(`{"concepts":{"A":"x","B":null},"relationships":[["a","b","c"],"text",null,1]}`)
	f.Add(`{"concepts":{"A":`)
	f.Add(`{"relationships":{"source":"A"}}`)
	f.Add("null")
	f.Add("}{")

	f.Fuzz(func(t *testing.T, reply string) {
		result, err := ParseResult(reply)
		require.NotNil(t, result)
		require.NotNil(t, result.Concepts)
		require.NotNil(t, result.Relationships)
		if err != nil {
			assert.True(t, result.IsEmpty())
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeParse))
		}
		for _, raw := range result.Relationships {
			raw.Triple()
		}
	})
}
