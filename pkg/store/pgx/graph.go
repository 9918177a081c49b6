package pgx

import (
	"context"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/logger"
)

const neighborhoodSQL = `
SELECT c.name, c.type, r.type, t.name, t.type
FROM entities c
LEFT JOIN relationships r ON r.user_id = c.user_id AND r.from_id = c.id
LEFT JOIN entities t ON t.id = r.to_id
WHERE c.user_id = $1 AND c.name = $2
ORDER BY r.id`

const exportNodesSQL = `
SELECT name, type
FROM entities
WHERE user_id = $1
ORDER BY name`

const exportEdgesSQL = `
SELECT f.name, t.name, r.type
FROM relationships r
JOIN entities f ON f.id = r.from_id
JOIN entities t ON t.id = r.to_id
WHERE r.user_id = $1
ORDER BY f.name, t.name, r.type`

// GetNeighborhood returns the entity with the given name together with
// its outgoing edges and their target entities. A name without a match
// in the user partition yields an empty context, not an error.
func (s *GraphDBStore) GetNeighborhood(
	ctx context.Context,
	name string,
	userID string,
) (common.GraphContext, error) {
	rows, err := s.conn.Query(ctx, neighborhoodSQL, userID, name)
	if err != nil {
		return common.GraphContext{}, err
	}
	defer rows.Close()

	var out common.GraphContext
	seen := make(map[string]struct{})
	addEntity := func(entityName, entityType string) {
		if _, ok := seen[entityName]; ok {
			return
		}
		seen[entityName] = struct{}{}
		out.Entities = append(out.Entities, common.Entity{
			Name: entityName,
			Type: common.ParseEntityType(entityType),
		})
	}

	for rows.Next() {
		var centerName, centerType string
		var relType, targetName, targetType *string
		if err := rows.Scan(&centerName, &centerType, &relType, &targetName, &targetType); err != nil {
			return common.GraphContext{}, err
		}

		addEntity(centerName, centerType)
		if relType == nil || targetName == nil || targetType == nil {
			continue
		}
		addEntity(*targetName, *targetType)
		out.Relationships = append(out.Relationships, common.Relationship{
			From: centerName,
			To:   *targetName,
			Type: common.RelationType(*relType),
		})
	}
	return out, rows.Err()
}

// ExportGraph returns every node and edge of the user partition in a
// renderer friendly shape, ordered by name for stable output.
func (s *GraphDBStore) ExportGraph(
	ctx context.Context,
	userID string,
) (common.GraphData, error) {
	out := common.GraphData{
		Nodes: []common.GraphNode{},
		Edges: []common.GraphEdge{},
	}

	nodes, err := s.exportNodes(ctx, userID)
	if err != nil {
		return common.GraphData{}, err
	}
	out.Nodes = nodes

	edges, err := s.exportEdges(ctx, userID)
	if err != nil {
		return common.GraphData{}, err
	}
	out.Edges = edges

	logger.Debug("[Store][ExportGraph] Exported graph",
		"nodes", len(out.Nodes),
		"edges", len(out.Edges),
	)
	return out, nil
}

// DeletePartition removes the user row; entities, relationships, and
// chunks cascade with it. Deleting an unknown user is a no-op.
func (s *GraphDBStore) DeletePartition(ctx context.Context, userID string) error {
	return util.RetryErrWithContext(ctx, s.maxRetries, func(rCtx context.Context) error {
		_, err := s.conn.Exec(rCtx, `DELETE FROM users WHERE id = $1`, userID)
		return err
	})
}

func (s *GraphDBStore) exportNodes(ctx context.Context, userID string) ([]common.GraphNode, error) {
	rows, err := s.conn.Query(ctx, exportNodesSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []common.GraphNode{}
	for rows.Next() {
		var name, entityType string
		if err := rows.Scan(&name, &entityType); err != nil {
			return nil, err
		}
		nodes = append(nodes, common.GraphNode{
			ID:    name,
			Label: name,
			Type:  entityType,
		})
	}
	return nodes, rows.Err()
}

func (s *GraphDBStore) exportEdges(ctx context.Context, userID string) ([]common.GraphEdge, error) {
	rows, err := s.conn.Query(ctx, exportEdgesSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := []common.GraphEdge{}
	for rows.Next() {
		var from, to, relType string
		if err := rows.Scan(&from, &to, &relType); err != nil {
			return nil, err
		}
		edges = append(edges, common.GraphEdge{
			From:  from,
			To:    to,
			Label: relType,
		})
	}
	return edges, rows.Err()
}
