package graph

import (
	"errors"

	"github.com/studygraph/backend/pkg/ai"
	"github.com/studygraph/backend/pkg/store"
)

// GraphClient drives the ingestion side of the knowledge graph: it
// chunks raw text, extracts entities and relationships through the
// completion service, and persists graph rows plus embedded chunks in
// the user's partition.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	store          store.GraphStore
	completions    ai.CompletionService
	embeddings     ai.EmbeddingService
	maxChunkChars  int
	parallelChunks int
}

// NewGraphClientParams defines the configuration parameters for
// creating a new GraphClient.
//
// MaxChunkChars bounds the size of a single text chunk.
// ParallelChunks controls how many chunks are extracted concurrently;
// the default processes chunks one at a time.
type NewGraphClientParams struct {
	Store          store.GraphStore
	Completions    ai.CompletionService
	Embeddings     ai.EmbeddingService
	MaxChunkChars  int
	ParallelChunks int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	if params.Store == nil {
		return nil, errors.New("store is required")
	}
	if params.Completions == nil {
		return nil, errors.New("completion service is required")
	}
	if params.Embeddings == nil {
		return nil, errors.New("embedding service is required")
	}

	maxChars := params.MaxChunkChars
	if maxChars <= 0 {
		maxChars = defaultMaxChunkChars
	}
	parallel := params.ParallelChunks
	if parallel < 1 {
		parallel = 1
	}

	return &GraphClient{
		store:          params.Store,
		completions:    params.Completions,
		embeddings:     params.Embeddings,
		maxChunkChars:  maxChars,
		parallelChunks: parallel,
	}, nil
}
