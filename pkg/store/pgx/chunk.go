package pgx

import (
	"context"
	"errors"

	"github.com/pgvector/pgvector-go"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/store"
)

const upsertChunkSQL = `
INSERT INTO chunks (user_id, id, text, source_heading, sequence_index, embedding)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, id) DO UPDATE
SET text = EXCLUDED.text,
    source_heading = EXCLUDED.source_heading,
    sequence_index = EXCLUDED.sequence_index,
    embedding = EXCLUDED.embedding`

const listChunksSQL = `
SELECT id, text, source_heading, sequence_index, embedding
FROM chunks
WHERE user_id = $1
ORDER BY sequence_index, id`

// UpsertChunk stores one source chunk with its embedding in the user
// partition. The chunk id is a content hash, so re-ingesting the same
// text overwrites the existing row.
func (s *GraphDBStore) UpsertChunk(
	ctx context.Context,
	chunk store.StoredChunk,
	userID string,
) error {
	if chunk.ID == "" {
		return errors.New("chunk id is empty")
	}

	var embedding any
	if len(chunk.Embedding) > 0 {
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	text := util.SanitizePostgresText(chunk.Text)
	heading := util.SanitizePostgresText(chunk.SourceHeading)

	return util.RetryErrWithContext(ctx, s.maxRetries, func(rCtx context.Context) error {
		logger.Debug("[Store][UpsertChunk] Upserting chunk",
			"chunkId", chunk.ID,
			"textLength", len(text),
		)
		_, err := s.conn.Exec(rCtx, upsertChunkSQL,
			userID, chunk.ID, text, heading, chunk.SequenceIndex, embedding)
		return err
	})
}

// ListChunks returns all chunks of the user partition in ingestion
// order. Rows stored without an embedding come back with a nil
// embedding slice.
func (s *GraphDBStore) ListChunks(
	ctx context.Context,
	userID string,
) ([]store.StoredChunk, error) {
	rows, err := s.conn.Query(ctx, listChunksSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []store.StoredChunk
	for rows.Next() {
		var chunk store.StoredChunk
		var embedding *pgvector.Vector
		if err := rows.Scan(
			&chunk.ID,
			&chunk.Text,
			&chunk.SourceHeading,
			&chunk.SequenceIndex,
			&embedding,
		); err != nil {
			return nil, err
		}
		if embedding != nil {
			chunk.Embedding = embedding.Slice()
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
