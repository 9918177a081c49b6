package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/studygraph/backend/pkg/ai"
	"github.com/studygraph/backend/pkg/common"
)

type extractEntity struct {
	Name string `json:"name" jsonschema_description:"Name of the entity, one to six words, canonical academic term"`
	Type string `json:"type" jsonschema_description:"One of the provided entity types"`
}

type extractRelationship struct {
	From string `json:"from" jsonschema_description:"Name of the source entity, exactly as listed in entities"`
	To   string `json:"to" jsonschema_description:"Name of the target entity, exactly as listed in entities"`
	Type string `json:"type" jsonschema_description:"One of the provided relationship types"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"Study-relevant entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships between the identified entities"`
}

func extractFromChunk(
	ctx context.Context,
	chunk common.Chunk,
	client ai.CompletionService,
) ([]common.Entity, []common.Relationship, error) {
	prompt := fmt.Sprintf(ai.ExtractPrompt, chunk.Text)

	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_entities_and_relationships",
		"Extract study-relevant entities and relationships from a chunk of learning material.",
		prompt,
		&res,
	)
	if err != nil {
		return nil, nil, err
	}

	return sanitizeEntities(res.Entities), sanitizeRelationships(res.Relationships), nil
}

// sanitizeEntities drops empty and duplicate names (first occurrence
// wins) and coerces unknown types to concept.
func sanitizeEntities(raw []extractEntity) []common.Entity {
	seen := make(map[string]struct{}, len(raw))
	entities := make([]common.Entity, 0, len(raw))
	for _, entity := range raw {
		name := strings.TrimSpace(entity.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		entities = append(entities, common.Entity{
			Name: name,
			Type: common.ParseEntityType(strings.ToLower(strings.TrimSpace(entity.Type))),
		})
	}
	return entities
}

// sanitizeRelationships drops self references, edges with an unknown
// or missing type, and duplicate (from, type, to) triples. Endpoint
// existence is not checked here; the store skips edges whose entities
// were never written.
func sanitizeRelationships(raw []extractRelationship) []common.Relationship {
	seen := make(map[string]struct{}, len(raw))
	relationships := make([]common.Relationship, 0, len(raw))
	for _, rel := range raw {
		from := strings.TrimSpace(rel.From)
		to := strings.TrimSpace(rel.To)
		if from == "" || to == "" || from == to {
			continue
		}
		relType, ok := common.ParseRelationType(strings.ToLower(strings.TrimSpace(rel.Type)))
		if !ok {
			continue
		}

		key := from + "|" + string(relType) + "|" + to
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		relationships = append(relationships, common.Relationship{
			From: from,
			To:   to,
			Type: relType,
		})
	}
	return relationships
}
