package pgx

import (
	"context"
	"sort"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/store"
)

const relationshipBatchSize = 500

const upsertRelationshipsSQL = `
INSERT INTO relationships (user_id, from_id, to_id, type)
SELECT $1, f.id, t.id, r.type
FROM unnest($2::text[], $3::text[], $4::text[]) AS r(from_name, to_name, type)
JOIN entities f ON f.user_id = $1 AND f.name = r.from_name
JOIN entities t ON t.user_id = $1 AND t.name = r.to_name
ON CONFLICT (user_id, from_id, type, to_id) DO NOTHING`

const listRelationshipsSQL = `
SELECT f.name, t.name, r.type
FROM relationships r
JOIN entities f ON f.id = r.from_id
JOIN entities t ON t.id = r.to_id
WHERE r.user_id = $1
ORDER BY r.created_at DESC, r.id DESC
LIMIT $2`

// UpsertRelationships writes edges between existing entities of the
// user partition. Edges whose endpoints are not present are skipped,
// and an edge that already exists with the same source, type, and
// target is left untouched.
func (s *GraphDBStore) UpsertRelationships(
	ctx context.Context,
	relationships []common.Relationship,
	userID string,
) error {
	if len(relationships) == 0 {
		return nil
	}

	deduped := dedupeRelationships(relationships)
	sort.Slice(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.To < b.To
	})

	return util.RetryErrWithContext(ctx, s.maxRetries, func(rCtx context.Context) error {
		return store.ChunkRange(len(deduped), relationshipBatchSize, func(start, end int) error {
			part := deduped[start:end]
			froms := make([]string, 0, len(part))
			tos := make([]string, 0, len(part))
			types := make([]string, 0, len(part))
			for _, rel := range part {
				froms = append(froms, util.SanitizePostgresText(rel.From))
				tos = append(tos, util.SanitizePostgresText(rel.To))
				types = append(types, string(rel.Type))
			}

			logger.Debug("[Store][UpsertRelationships] Upserting batch",
				"relationships", len(part),
			)
			_, err := s.conn.Exec(rCtx, upsertRelationshipsSQL, userID, froms, tos, types)
			return err
		})
	})
}

// ListRelationships returns the most recently created edges of the
// user partition, newest first, with endpoint names resolved.
func (s *GraphDBStore) ListRelationships(
	ctx context.Context,
	userID string,
	limit int,
) ([]common.Relationship, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.conn.Query(ctx, listRelationshipsSQL, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	relationships := make([]common.Relationship, 0, limit)
	for rows.Next() {
		var from, to, relType string
		if err := rows.Scan(&from, &to, &relType); err != nil {
			return nil, err
		}
		relationships = append(relationships, common.Relationship{
			From: from,
			To:   to,
			Type: common.RelationType(relType),
		})
	}
	return relationships, rows.Err()
}

func dedupeRelationships(in []common.Relationship) []common.Relationship {
	type relKey struct {
		from, to string
		relType  common.RelationType
	}
	seen := make(map[relKey]struct{}, len(in))
	out := make([]common.Relationship, 0, len(in))
	for _, rel := range in {
		key := relKey{from: rel.From, to: rel.To, relType: rel.Type}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rel)
	}
	return out
}
