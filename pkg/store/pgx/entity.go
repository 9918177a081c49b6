package pgx

import (
	"context"
	"sort"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/store"
)

const entityBatchSize = 250

const upsertEntitiesSQL = `
INSERT INTO entities (user_id, name, type)
SELECT $1, unnest($2::text[]), unnest($3::text[])
ON CONFLICT (user_id, name) DO UPDATE
SET type = EXCLUDED.type, updated_at = now()`

const listEntitiesSQL = `
SELECT name, type
FROM entities
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

// EnsurePartition creates the partition row for the user if it does
// not exist yet. Safe to call on every ingestion.
func (s *GraphDBStore) EnsurePartition(ctx context.Context, userID string) error {
	return util.RetryErrWithContext(ctx, s.maxRetries, func(rCtx context.Context) error {
		_, err := s.conn.Exec(rCtx,
			`INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
			userID)
		return err
	})
}

// UpsertEntities writes entities into the user partition, keyed by
// name. Re-upserting an existing name overwrites its type instead of
// creating a second node.
func (s *GraphDBStore) UpsertEntities(
	ctx context.Context,
	entities []common.Entity,
	userID string,
) error {
	if len(entities) == 0 {
		return nil
	}

	merged := mergeEntitiesByName(entities)
	// Stable order keeps concurrent batches from deadlocking on row locks.
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })

	return util.RetryErrWithContext(ctx, s.maxRetries, func(rCtx context.Context) error {
		return store.ChunkRange(len(merged), entityBatchSize, func(start, end int) error {
			part := merged[start:end]
			names := make([]string, 0, len(part))
			types := make([]string, 0, len(part))
			for _, entity := range part {
				names = append(names, util.SanitizePostgresText(entity.Name))
				types = append(types, string(entity.Type))
			}

			logger.Debug("[Store][UpsertEntities] Upserting batch",
				"entities", len(part),
			)
			_, err := s.conn.Exec(rCtx, upsertEntitiesSQL, userID, names, types)
			return err
		})
	})
}

// ListEntities returns the most recently created entities of the user
// partition, newest first.
func (s *GraphDBStore) ListEntities(
	ctx context.Context,
	userID string,
	limit int,
) ([]common.Entity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.Query(ctx, listEntitiesSQL, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := make([]common.Entity, 0, limit)
	for rows.Next() {
		var name, entityType string
		if err := rows.Scan(&name, &entityType); err != nil {
			return nil, err
		}
		entities = append(entities, common.Entity{
			Name: name,
			Type: common.ParseEntityType(entityType),
		})
	}
	return entities, rows.Err()
}

// mergeEntitiesByName collapses duplicate names inside one payload so
// the upsert statement never touches the same row twice. The first
// occurrence wins the slot, later occurrences may refine the type.
func mergeEntitiesByName(in []common.Entity) []common.Entity {
	index := make(map[string]int, len(in))
	out := make([]common.Entity, 0, len(in))
	for _, entity := range in {
		if entity.Name == "" {
			continue
		}
		if at, ok := index[entity.Name]; ok {
			if entity.Type != "" {
				out[at].Type = entity.Type
			}
			continue
		}
		index[entity.Name] = len(out)
		out = append(out, entity)
	}
	return out
}
