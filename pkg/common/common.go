package common

// EntityType classifies a node in a user's knowledge graph. Study
// material breaks down into a small fixed vocabulary: abstract concepts,
// named frameworks, formal definitions, learning objectives, and the
// structural pieces (processes, steps, examples) that hang off them.
type EntityType string

const (
	EntityTypeConcept           EntityType = "concept"
	EntityTypeFramework         EntityType = "framework"
	EntityTypeDefinition        EntityType = "definition"
	EntityTypeLearningObjective EntityType = "learning_objective"
	EntityTypeOrganization      EntityType = "organization"
	EntityTypeExample           EntityType = "example"
	EntityTypeProcess           EntityType = "process"
	EntityTypeStep              EntityType = "step"
)

// ParseEntityType maps a raw type string onto the known vocabulary.
// Unknown values fall back to EntityTypeConcept so that a sloppy
// extraction never loses a node over its label.
func ParseEntityType(s string) EntityType {
	switch EntityType(s) {
	case EntityTypeConcept, EntityTypeFramework, EntityTypeDefinition,
		EntityTypeLearningObjective, EntityTypeOrganization,
		EntityTypeExample, EntityTypeProcess, EntityTypeStep:
		return EntityType(s)
	}
	return EntityTypeConcept
}

// RelationType classifies a directed edge between two entities.
type RelationType string

const (
	RelationTypeDefines      RelationType = "defines"
	RelationTypeHasComponent RelationType = "has_component"
	RelationTypeHasStep      RelationType = "has_step"
	RelationTypePartOf       RelationType = "part_of"
	RelationTypeExampleOf    RelationType = "example_of"
	RelationTypeUsedIn       RelationType = "used_in"
	RelationTypeSupports     RelationType = "supports"
	RelationTypeObjectiveOf  RelationType = "objective_of"
	RelationTypeCauseOf      RelationType = "cause_of"
)

// ParseRelationType maps a raw type string onto the known edge
// vocabulary. Unlike entity types there is no fallback: an edge with an
// unknown type carries no usable meaning, so ok reports whether the
// value was recognized and callers drop the edge when it was not.
func ParseRelationType(s string) (RelationType, bool) {
	switch RelationType(s) {
	case RelationTypeDefines, RelationTypeHasComponent, RelationTypeHasStep,
		RelationTypePartOf, RelationTypeExampleOf, RelationTypeUsedIn,
		RelationTypeSupports, RelationTypeObjectiveOf, RelationTypeCauseOf:
		return RelationType(s), true
	}
	return "", false
}

// Entity represents a node in a user's knowledge graph. Names are short
// noun phrases (one to six words) and are unique within a user's
// partition; upserting an existing name overwrites its type rather than
// creating a duplicate.
type Entity struct {
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// Relationship represents a directed, typed edge between two entities,
// referenced by name. Both endpoints must exist in the same user
// partition before the edge can be stored, self references are
// rejected, and the triple (from, type, to) is unique per user.
type Relationship struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Type RelationType `json:"type"`
}

// Chunk is a heading-scoped, size-bounded segment of ingested document
// text. SourceHeading carries the section heading the segment was
// produced under (empty when the document had none before it) and
// SequenceIndex its position in the original document order.
type Chunk struct {
	Text          string `json:"text"`
	SourceHeading string `json:"source_heading"`
	SequenceIndex int    `json:"sequence_index"`
}

// GraphContext is the one-hop neighborhood around a single concept,
// rebuilt for every query and never persisted. Entities holds the
// matched entity followed by every target it points at; Relationships
// holds the traversed edges.
type GraphContext struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// Empty reports whether the neighborhood contains no entities, which is
// how an unknown concept presents to the query pipeline.
func (g GraphContext) Empty() bool {
	return len(g.Entities) == 0
}

// GraphNode is the export representation of an entity for
// visualization clients.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// GraphEdge is the export representation of a relationship for
// visualization clients.
type GraphEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// GraphData bundles a user's full graph in the node/edge shape
// visualization clients consume.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
