package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ExtractionResult is what the extractor pulls out of a conversation. It is
// never persisted as is; the merger applies it to a store.
type ExtractionResult struct {
	Concepts      *ConceptMap       `json:"concepts"`
	Relationships []RawRelationship `json:"relationships"`
}

// UnmarshalJSON decodes concepts and relationships item by item. A concept
// whose attributes are not an object is dropped. A relationship that is not
// an object is kept as a nil RawRelationship so the merger counts it as
// skipped. Only a document that is not an object with those two shapes
// fails.
func (r *ExtractionResult) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw struct {
		Concepts      *orderedmap.OrderedMap[string, json.RawMessage] `json:"concepts"`
		Relationships []json.RawMessage                               `json:"relationships"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Concepts != nil {
		r.Concepts = NewConceptMap()
		for pair := raw.Concepts.Oldest(); pair != nil; pair = pair.Next() {
			var attrs Attributes
			if err := json.Unmarshal(pair.Value, &attrs); err != nil {
				continue
			}
			if attrs == nil {
				attrs = Attributes{}
			}
			r.Concepts.Set(pair.Key, attrs)
		}
	}

	if raw.Relationships != nil {
		r.Relationships = make([]RawRelationship, 0, len(raw.Relationships))
		for _, item := range raw.Relationships {
			var rel RawRelationship
			if err := json.Unmarshal(item, &rel); err != nil {
				rel = nil
			}
			r.Relationships = append(r.Relationships, rel)
		}
	}
	return nil
}

func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		Concepts:      NewConceptMap(),
		Relationships: []RawRelationship{},
	}
}

// Normalize fills in whichever of the two keys the model left out.
func (r *ExtractionResult) Normalize() *ExtractionResult {
	if r == nil {
		return NewExtractionResult()
	}
	if r.Concepts == nil {
		r.Concepts = NewConceptMap()
	}
	if r.Relationships == nil {
		r.Relationships = []RawRelationship{}
	}
	return r
}

func (r *ExtractionResult) IsEmpty() bool {
	return r == nil || ((r.Concepts == nil || r.Concepts.Len() == 0) && len(r.Relationships) == 0)
}

// RawRelationship is a relationship exactly as the model wrote it. Models
// drop fields, so nothing is assumed until Triple is called.
type RawRelationship map[string]interface{}

// Triple converts r into a Relationship. It reports false when source,
// relation or target is missing or null, and for a nil r. Non-string
// values are formatted.
func (r RawRelationship) Triple() (Relationship, bool) {
	source, ok := r.field("source")
	if !ok {
		return Relationship{}, false
	}
	relation, ok := r.field("relation")
	if !ok {
		return Relationship{}, false
	}
	target, ok := r.field("target")
	if !ok {
		return Relationship{}, false
	}
	return Relationship{Source: source, Relation: relation, Target: target}, true
}

func (r RawRelationship) field(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
