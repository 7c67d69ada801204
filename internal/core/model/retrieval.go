package model

import (
	"encoding/json"
)

// SampleSize caps the concept names listed in a summary package.
const SampleSize = 5

// RetrievalPackage is the context handed to the answering model. It has one
// of two shapes: matched concepts with their relationships, or a store
// summary with a few sample names when nothing matched.
type RetrievalPackage struct {
	Concepts      *ConceptMap
	Relationships []Relationship

	Summary        string
	SampleConcepts []string
}

// Matched reports whether the package carries concept data rather than a
// summary.
func (p *RetrievalPackage) Matched() bool {
	return p != nil && p.Concepts != nil && p.Concepts.Len() > 0
}

type matchedPackage struct {
	Concepts      *ConceptMap    `json:"concepts"`
	Relationships []Relationship `json:"relationships"`
}

type summaryPackage struct {
	Summary        string   `json:"summary"`
	SampleConcepts []string `json:"sample_concepts"`
}

// MarshalJSON emits exactly one of the two shapes, never a mix.
func (p RetrievalPackage) MarshalJSON() ([]byte, error) {
	if p.Matched() {
		rels := p.Relationships
		if rels == nil {
			rels = []Relationship{}
		}
		return json.Marshal(matchedPackage{Concepts: p.Concepts, Relationships: rels})
	}
	sample := p.SampleConcepts
	if sample == nil {
		sample = []string{}
	}
	return json.Marshal(summaryPackage{Summary: p.Summary, SampleConcepts: sample})
}

func (p *RetrievalPackage) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if _, ok := keys["concepts"]; ok {
		var m matchedPackage
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*p = RetrievalPackage{Concepts: m.Concepts, Relationships: m.Relationships}
		return nil
	}
	var s summaryPackage
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = RetrievalPackage{Summary: s.Summary, SampleConcepts: s.SampleConcepts}
	return nil
}
