package merge

import (
	"context"

	"github.com/agenthands/distill/internal/core/model"
)

// Target is the part of the store the merger writes to.
type Target interface {
	AddConcept(ctx context.Context, name string, attributes model.Attributes) error
	AddRelationship(ctx context.Context, source, relation, target string) error
}

// Summary counts what Apply wrote.
type Summary struct {
	Concepts      int `json:"concepts"`
	Relationships int `json:"relationships"`
	Skipped       int `json:"skipped"`
}

// Apply writes every concept of result into store, then every relationship
// that names a source, relation and target. Incomplete relationships are
// skipped. Applying the same result twice leaves the store unchanged the
// second time. The first storage error stops the merge.
func Apply(ctx context.Context, result *model.ExtractionResult, store Target) (Summary, error) {
	var sum Summary
	if result == nil {
		return sum, nil
	}

	if result.Concepts != nil {
		for pair := result.Concepts.Oldest(); pair != nil; pair = pair.Next() {
			if err := store.AddConcept(ctx, pair.Key, pair.Value); err != nil {
				return sum, err
			}
			sum.Concepts++
		}
	}

	for _, raw := range result.Relationships {
		rel, ok := raw.Triple()
		if !ok {
			sum.Skipped++
			continue
		}
		if err := store.AddRelationship(ctx, rel.Source, rel.Relation, rel.Target); err != nil {
			return sum, err
		}
		sum.Relationships++
	}

	return sum, nil
}
