package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/distill/internal/core/model"
	"github.com/agenthands/distill/internal/driver"
	apperrors "github.com/agenthands/distill/internal/errors"
)

// MemgraphBackend keeps a knowledge base as :Concept and :Relation nodes
// tagged with the knowledge base id.
type MemgraphBackend struct {
	driver driver.GraphDriver
	kb     string
}

func NewMemgraphBackend(ctx context.Context, d driver.GraphDriver, kb string) (*MemgraphBackend, error) {
	if err := d.BuildIndices(ctx); err != nil {
		return nil, apperrors.NewStorageFailed("memgraph", "building indices", err)
	}
	return &MemgraphBackend{driver: d, kb: kb}, nil
}

func (b *MemgraphBackend) Name() string { return "memgraph" }

func (b *MemgraphBackend) Load(ctx context.Context) (*model.KnowledgeData, error) {
	data := model.NewKnowledgeData()
	params := map[string]interface{}{"kb": b.kb}

	concepts, err := b.driver.ExecuteQuery(ctx, driver.LoadConceptsQuery, params)
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "loading concepts", err)
	}
	for _, rec := range concepts.Records {
		name := recordString(rec, "name")
		attrs, err := decodeAttributes(recordString(rec, "attributes"))
		if err != nil {
			return nil, apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("bad attributes for %q", name), err)
		}
		data.Concepts.Set(name, attrs)
	}

	rels, err := b.driver.ExecuteQuery(ctx, driver.LoadRelationsQuery, params)
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "loading relationships", err)
	}
	for _, rec := range rels.Records {
		data.Relationships = append(data.Relationships, model.Relationship{
			Source:   recordString(rec, "source"),
			Relation: recordString(rec, "relation"),
			Target:   recordString(rec, "target"),
		})
	}

	return data, nil
}

func (b *MemgraphBackend) Save(ctx context.Context, data *model.KnowledgeData) error {
	concepts := make([]interface{}, 0, data.Concepts.Len())
	position := 0
	for pair := data.Concepts.Oldest(); pair != nil; pair = pair.Next() {
		raw, err := encodeAttributes(pair.Value)
		if err != nil {
			return apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("encoding attributes for %q", pair.Key), err)
		}
		concepts = append(concepts, map[string]interface{}{
			"name":       pair.Key,
			"attributes": raw,
			"position":   position,
		})
		position++
	}

	rels := make([]interface{}, 0, len(data.Relationships))
	for i, rel := range data.Relationships {
		rels = append(rels, map[string]interface{}{
			"source":   rel.Source,
			"relation": rel.Relation,
			"target":   rel.Target,
			"position": i,
		})
	}

	statements := []driver.Statement{
		{Query: driver.DeleteKnowledgeBaseQuery, Params: map[string]interface{}{"kb": b.kb}},
	}
	if len(concepts) > 0 {
		statements = append(statements, driver.Statement{
			Query:  driver.SaveConceptsQuery,
			Params: map[string]interface{}{"kb": b.kb, "concepts": concepts},
		})
	}
	if len(rels) > 0 {
		statements = append(statements, driver.Statement{
			Query:  driver.SaveRelationsQuery,
			Params: map[string]interface{}{"kb": b.kb, "relationships": rels},
		})
	}

	if err := b.driver.ExecuteWrite(ctx, statements); err != nil {
		return apperrors.NewStorageFailed(b.Name(), "saving knowledge base", err)
	}
	return nil
}

func (b *MemgraphBackend) Close(ctx context.Context) error {
	return b.driver.Close(ctx)
}

func recordString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
