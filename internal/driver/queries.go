package driver

// Concepts and relationships are stored as separate node kinds tagged with
// the knowledge base they belong to. Relationships are nodes rather than
// edges because either end may name a concept that does not exist.
// position keeps the insertion order of both lists.

var IndexQueries = []string{
	"CREATE INDEX ON :Concept(kb);",
	"CREATE INDEX ON :Concept(name);",
	"CREATE INDEX ON :Relation(kb);",
}

const (
	LoadConceptsQuery = `
		MATCH (c:Concept {kb: $kb})
		RETURN c.name AS name, c.attributes AS attributes
		ORDER BY c.position
	`

	LoadRelationsQuery = `
		MATCH (r:Relation {kb: $kb})
		RETURN r.source AS source, r.relation AS relation, r.target AS target
		ORDER BY r.position
	`

	DeleteKnowledgeBaseQuery = `
		MATCH (n {kb: $kb})
		WHERE n:Concept OR n:Relation
		DETACH DELETE n
	`

	// attributes holds the JSON encoding of the attribute map.
	SaveConceptsQuery = `
		UNWIND $concepts AS c
		CREATE (:Concept {kb: $kb, name: c.name, attributes: c.attributes, position: c.position})
	`

	SaveRelationsQuery = `
		UNWIND $relationships AS r
		CREATE (:Relation {kb: $kb, source: r.source, relation: r.relation, target: r.target, position: r.position})
	`
)
