package model

// KnowledgeData is the whole knowledge base: the unit of export, import and
// persistence. Its JSON form is the on-disk document:
//
//	{"concepts": {"<name>": {...}}, "relationships": [{"source", "relation", "target"}]}
type KnowledgeData struct {
	Concepts      *ConceptMap    `json:"concepts"`
	Relationships []Relationship `json:"relationships"`
}

func NewKnowledgeData() *KnowledgeData {
	return &KnowledgeData{
		Concepts:      NewConceptMap(),
		Relationships: []Relationship{},
	}
}

// Normalize replaces missing parts with empty ones so a document that lacks
// a key still loads as a usable knowledge base.
func (d *KnowledgeData) Normalize() *KnowledgeData {
	if d == nil {
		return NewKnowledgeData()
	}
	if d.Concepts == nil {
		d.Concepts = NewConceptMap()
	}
	if d.Relationships == nil {
		d.Relationships = []Relationship{}
	}
	return d
}

// Clone returns a deep copy that shares nothing with d.
func (d *KnowledgeData) Clone() *KnowledgeData {
	if d == nil {
		return NewKnowledgeData()
	}
	rels := make([]Relationship, len(d.Relationships))
	copy(rels, d.Relationships)
	return &KnowledgeData{
		Concepts:      CloneConceptMap(d.Concepts),
		Relationships: rels,
	}
}

// Stats counts the contents of a knowledge base.
type Stats struct {
	ConceptCount      int `json:"concept_count"`
	RelationshipCount int `json:"relationship_count"`
}

func (d *KnowledgeData) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	s := Stats{RelationshipCount: len(d.Relationships)}
	if d.Concepts != nil {
		s.ConceptCount = d.Concepts.Len()
	}
	return s
}
