package query

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/studygraph/backend/pkg/store"
)

// VectorResult pairs a stored chunk with its cosine similarity to the
// search query.
type VectorResult struct {
	Chunk      store.StoredChunk
	Similarity float64
}

// VectorSearch scores all of the user's stored chunks against the
// query by cosine similarity and returns at most topK results above
// the relevance floor, ordered by descending similarity. Ties keep
// the stored chunk order. Chunks persisted without an embedding are
// embedded on the fly with the same model as the query.
func (q *QueryClient) VectorSearch(ctx context.Context, query string, userID string, tracers ...Tracer) ([]VectorResult, error) {
	tracer := MultiTracer(tracers)

	chunks, err := q.store.ListChunks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	chunkIDs := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunkIDs = append(chunkIDs, chunk.ID)
	}
	RecordConsideredChunks(tracer, chunkIDs...)

	queryEmbedding, err := q.embeddings.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := q.fillMissingEmbeddings(ctx, chunks); err != nil {
		return nil, err
	}

	results := make([]VectorResult, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, VectorResult{
			Chunk:      chunk,
			Similarity: cosineSimilarity(queryEmbedding, chunk.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > q.topK {
		results = results[:q.topK]
	}
	filtered := results[:0]
	for _, result := range results {
		if result.Similarity > q.minSimilarity {
			filtered = append(filtered, result)
		}
	}

	usedIDs := make([]string, 0, len(filtered))
	for _, result := range filtered {
		usedIDs = append(usedIDs, result.Chunk.ID)
	}
	RecordUsedChunks(tracer, usedIDs...)

	return filtered, nil
}

// fillMissingEmbeddings backfills embeddings for chunks stored without
// one, in a single batch call.
func (q *QueryClient) fillMissingEmbeddings(ctx context.Context, chunks []store.StoredChunk) error {
	var texts []string
	var missing []int
	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			texts = append(texts, chunk.Text)
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	embeddings, err := q.embeddings.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(missing) {
		return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(missing))
	}
	for i, at := range missing {
		chunks[at].Embedding = embeddings[i]
	}
	return nil
}

// cosineSimilarity returns the cosine of the angle between two
// vectors, or 0 when either is empty, zero, or the dimensions differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
