package query

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
	"github.com/agenthands/distill/internal/logger"
)

// Source is the read side of the store.
type Source interface {
	ConceptNames() []string
	QueryConcept(name string) (model.Attributes, bool)
	QueryRelationships(concept string) []model.Relationship
	Stats() model.Stats
}

type Engine struct {
	LLM     llm.LLMClient
	Prompts config.QueryPrompts
	Match   Matcher
	Logger  *zap.Logger
}

// NewEngine picks the matcher named in prompts, falling back to substring
// matching for unknown names.
func NewEngine(llmClient llm.LLMClient, prompts config.QueryPrompts) *Engine {
	log := logger.Get()
	match, err := MatcherByName(prompts.Matcher)
	if err != nil {
		log.Warn("Falling back to substring matching", zap.Error(err))
		match = SubstringMatcher
	}
	return &Engine{
		LLM:     llmClient,
		Prompts: prompts,
		Match:   match,
		Logger:  log,
	}
}

// Retrieve builds the context for question: the concepts it mentions with
// every relationship touching each of them, or a store summary when it
// mentions none.
func (e *Engine) Retrieve(question string, src Source) model.RetrievalPackage {
	match := e.Match
	if match == nil {
		match = SubstringMatcher
	}

	matched := model.NewConceptMap()
	var rels []model.Relationship
	for _, name := range src.ConceptNames() {
		if !match(question, name) {
			continue
		}
		attrs, _ := src.QueryConcept(name)
		if attrs == nil {
			attrs = model.Attributes{}
		}
		matched.Set(name, attrs)
		rels = append(rels, src.QueryRelationships(name)...)
	}

	if matched.Len() > 0 {
		if rels == nil {
			rels = []model.Relationship{}
		}
		return model.RetrievalPackage{Concepts: matched, Relationships: rels}
	}

	return Summarize(src)
}

// Summarize is the package used when nothing in the question matched.
func Summarize(src Source) model.RetrievalPackage {
	stats := src.Stats()
	names := src.ConceptNames()
	if len(names) > model.SampleSize {
		names = names[:model.SampleSize]
	}
	return model.RetrievalPackage{
		Summary:        SummaryText(stats),
		SampleConcepts: names,
	}
}

func SummaryText(stats model.Stats) string {
	return fmt.Sprintf("Knowledge base contains %d concepts and %d relationships.", stats.ConceptCount, stats.RelationshipCount)
}

// Answer retrieves context for question and asks the model to answer from
// it alone. The package is returned even when the model call fails.
func (e *Engine) Answer(ctx context.Context, question string, src Source) (string, model.RetrievalPackage, error) {
	log := logger.Or(e.Logger)
	pkg := e.Retrieve(question, src)

	payload, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return "", pkg, fmt.Errorf("failed to encode retrieval package: %w", err)
	}

	log.Debug("Answering query",
		zap.String("query", question),
		zap.Bool("matched", pkg.Matched()),
	)

	req := llm.SingleTurn(e.Prompts.System, fmt.Sprintf(e.Prompts.User, question, string(payload)), e.Prompts.MaxTokens)
	answer, err := e.LLM.Generate(ctx, req)
	if err != nil {
		log.Error("Query answering call failed", zap.Error(err))
		if !apperrors.IsErrorType(err, apperrors.ErrorTypeTransport) {
			err = apperrors.NewTransportFailed("query answer", err)
		}
		return "", pkg, err
	}

	return answer, pkg, nil
}
