package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agenthands/distill/internal/core/model"
)

type QueryConceptInput struct {
	Name string `json:"name" jsonschema:"exact concept name"`
}

type QueryRelationshipsInput struct {
	Concept string `json:"concept" jsonschema:"concept name at either end of the relationship"`
}

type QueryByAttributeInput struct {
	Attribute string `json:"attribute" jsonschema:"attribute key"`
	Value     any    `json:"value" jsonschema:"value the attribute must equal"`
}

type AddConceptInput struct {
	Name       string         `json:"name" jsonschema:"concept name"`
	Attributes map[string]any `json:"attributes,omitempty" jsonschema:"attributes; replaces any existing ones"`
}

type AddRelationshipInput struct {
	Source   string `json:"source" jsonschema:"source concept"`
	Relation string `json:"relation" jsonschema:"relation name"`
	Target   string `json:"target" jsonschema:"target concept"`
}

type StatsInput struct{}

type AskInput struct {
	Question string `json:"question" jsonschema:"question to answer from the knowledge base"`
}

type ConceptOutput struct {
	Name       string         `json:"name"`
	Found      bool           `json:"found"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type RelationshipsOutput struct {
	Relationships []model.Relationship `json:"relationships"`
}

type ConceptNamesOutput struct {
	Concepts []string `json:"concepts"`
}

// AskOutput carries the retrieval package as any: its concept map has no
// static schema.
type AskOutput struct {
	Answer    string `json:"answer"`
	Retrieval any    `json:"retrieval"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "query_concept",
		Description: "Look up a concept by exact name and return its attributes",
	}, s.handleQueryConcept)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "query_relationships",
		Description: "List relationships where the concept is the source or the target",
	}, s.handleQueryRelationships)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "query_by_attribute",
		Description: "List concepts whose attribute equals a value",
	}, s.handleQueryByAttribute)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_concept",
		Description: "Create a concept or replace its attributes",
	}, s.handleAddConcept)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_relationship",
		Description: "Add a source-relation-target triple unless it already exists",
	}, s.handleAddRelationship)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "kb_stats",
		Description: "Count concepts and relationships",
	}, s.handleStats)

	if s.engine != nil {
		sdk.AddTool(s.mcp, &sdk.Tool{
			Name:        "ask",
			Description: "Answer a question using only the knowledge base",
		}, s.handleAsk)
	}
}

func (s *Server) handleQueryConcept(ctx context.Context, req *sdk.CallToolRequest, input QueryConceptInput) (*sdk.CallToolResult, ConceptOutput, error) {
	if input.Name == "" {
		return nil, ConceptOutput{}, fmt.Errorf("name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs, ok := s.store.QueryConcept(input.Name)
	return nil, ConceptOutput{Name: input.Name, Found: ok, Attributes: attrs}, nil
}

func (s *Server) handleQueryRelationships(ctx context.Context, req *sdk.CallToolRequest, input QueryRelationshipsInput) (*sdk.CallToolResult, RelationshipsOutput, error) {
	if input.Concept == "" {
		return nil, RelationshipsOutput{}, fmt.Errorf("concept is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, RelationshipsOutput{Relationships: s.store.QueryRelationships(input.Concept)}, nil
}

func (s *Server) handleQueryByAttribute(ctx context.Context, req *sdk.CallToolRequest, input QueryByAttributeInput) (*sdk.CallToolResult, ConceptNamesOutput, error) {
	if input.Attribute == "" {
		return nil, ConceptNamesOutput{}, fmt.Errorf("attribute is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, ConceptNamesOutput{Concepts: s.store.QueryByAttribute(input.Attribute, input.Value)}, nil
}

func (s *Server) handleAddConcept(ctx context.Context, req *sdk.CallToolRequest, input AddConceptInput) (*sdk.CallToolResult, ConceptOutput, error) {
	if input.Name == "" {
		return nil, ConceptOutput{}, fmt.Errorf("name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.AddConcept(ctx, input.Name, input.Attributes); err != nil {
		return nil, ConceptOutput{}, err
	}
	attrs, _ := s.store.QueryConcept(input.Name)
	return nil, ConceptOutput{Name: input.Name, Found: true, Attributes: attrs}, nil
}

func (s *Server) handleAddRelationship(ctx context.Context, req *sdk.CallToolRequest, input AddRelationshipInput) (*sdk.CallToolResult, RelationshipsOutput, error) {
	if input.Source == "" || input.Relation == "" || input.Target == "" {
		return nil, RelationshipsOutput{}, fmt.Errorf("source, relation and target are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.AddRelationship(ctx, input.Source, input.Relation, input.Target); err != nil {
		return nil, RelationshipsOutput{}, err
	}
	return nil, RelationshipsOutput{Relationships: s.store.QueryRelationships(input.Source)}, nil
}

func (s *Server) handleStats(ctx context.Context, req *sdk.CallToolRequest, input StatsInput) (*sdk.CallToolResult, model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, s.store.Stats(), nil
}

func (s *Server) handleAsk(ctx context.Context, req *sdk.CallToolRequest, input AskInput) (*sdk.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, fmt.Errorf("question is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, pkg, err := s.engine.Answer(ctx, input.Question, s.store)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer, Retrieval: pkg}, nil
}
