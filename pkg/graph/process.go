package graph

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/store"
)

// ProcessResult summarizes one ingestion run. ProcessedChunks counts
// chunks that yielded at least one entity or relationship; the totals
// count sanitized extraction output, before the store drops edges with
// missing endpoints.
type ProcessResult struct {
	ProcessedChunks    int  `json:"processed_chunks"`
	TotalEntities      int  `json:"total_entities"`
	TotalRelationships int  `json:"total_relationships"`
	Success            bool `json:"success"`
}

// ProcessText chunks raw document text and runs the extraction
// pipeline over the result. Input that produces no chunks yields an
// unsuccessful zero result without an error.
func (g *GraphClient) ProcessText(
	ctx context.Context,
	text string,
	userID string,
) (ProcessResult, error) {
	chunks := splitIntoChunks(text, g.maxChunkChars)
	if len(chunks) == 0 {
		return ProcessResult{}, nil
	}
	return g.ProcessChunks(ctx, chunks, userID)
}

// ProcessChunks extracts entities and relationships from every chunk
// and persists them, together with the embedded chunk text, in the
// user's partition. Extraction failures are soft: the chunk is logged
// and skipped while the pipeline continues, and writes already made
// for earlier chunks stay durable. Store and embedding failures abort
// the run.
func (g *GraphClient) ProcessChunks(
	ctx context.Context,
	chunks []common.Chunk,
	userID string,
) (ProcessResult, error) {
	if err := g.store.EnsurePartition(ctx, userID); err != nil {
		return ProcessResult{}, err
	}

	run := util.RunID()
	logger.Info("[Graph][ProcessChunks] Starting ingestion run",
		"run", run,
		"chunks", len(chunks),
	)

	var mu sync.Mutex
	var result ProcessResult

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelChunks)
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}

		eg.Go(func() error {
			logger.Debug("[Graph][ProcessChunks] Processing chunk",
				"run", run,
				"chunk", i+1,
				"chunks", len(chunks),
				"chars", len(chunk.Text),
			)

			entities, relationships, err := extractFromChunk(gCtx, chunk, g.completions)
			if err != nil {
				logger.Warn("[Graph][ProcessChunks] Extraction failed, skipping chunk",
					"run", run,
					"chunk", i+1,
					"chunks", len(chunks),
					"err", err,
				)
				entities, relationships = nil, nil
			}

			if len(entities) > 0 || len(relationships) > 0 {
				if err := g.store.UpsertEntities(gCtx, entities, userID); err != nil {
					return err
				}
				if err := g.store.UpsertRelationships(gCtx, relationships, userID); err != nil {
					return err
				}

				mu.Lock()
				result.ProcessedChunks++
				result.TotalEntities += len(entities)
				result.TotalRelationships += len(relationships)
				mu.Unlock()
			}

			return g.persistChunk(gCtx, chunk, userID)
		})
	}

	if err := eg.Wait(); err != nil {
		return ProcessResult{}, err
	}

	result.Success = true
	logger.Info("[Graph][ProcessChunks] Ingestion run complete",
		"run", run,
		"processed_chunks", result.ProcessedChunks,
		"entities", result.TotalEntities,
		"relationships", result.TotalRelationships,
	)
	return result, nil
}

// persistChunk embeds the chunk text and stores it for vector
// retrieval. Every non-blank chunk is stored, even when extraction
// yielded nothing, because the raw text is still searchable context.
func (g *GraphClient) persistChunk(ctx context.Context, chunk common.Chunk, userID string) error {
	embedding, err := g.embeddings.GenerateEmbedding(ctx, chunk.Text)
	if err != nil {
		return err
	}

	return g.store.UpsertChunk(ctx, store.StoredChunk{
		ID:            util.ChunkID(chunk.Text),
		Text:          chunk.Text,
		SourceHeading: chunk.SourceHeading,
		SequenceIndex: chunk.SequenceIndex,
		Embedding:     embedding,
	}, userID)
}
