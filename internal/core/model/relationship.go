package model

import "fmt"

// Relationship is a directed (source, relation, target) triple. Source and
// target are concept names but need not exist in the concept map.
type Relationship struct {
	Source   string `json:"source" yaml:"source"`
	Relation string `json:"relation" yaml:"relation"`
	Target   string `json:"target" yaml:"target"`
}

// Touches reports whether concept is the source or the target of r.
func (r Relationship) Touches(concept string) bool {
	return r.Source == concept || r.Target == concept
}

func (r Relationship) String() string {
	return fmt.Sprintf("%s %s %s", r.Source, r.Relation, r.Target)
}

// ContainsRelationship reports whether rels holds a triple equal to r on all
// three fields.
func ContainsRelationship(rels []Relationship, r Relationship) bool {
	for _, existing := range rels {
		if existing == r {
			return true
		}
	}
	return false
}
