package query

import (
	"errors"

	"github.com/studygraph/backend/pkg/ai"
	"github.com/studygraph/backend/pkg/store"
)

const (
	defaultTopK               = 5
	defaultMinSimilarity      = 0.1
	defaultContextTokenBudget = 4096
)

// QueryClient answers questions over a user's knowledge graph by
// combining a one-hop graph neighborhood with a vector similarity
// search over the stored chunks.
//
// A QueryClient should be created using NewQueryClient.
type QueryClient struct {
	store              store.GraphStore
	completions        ai.CompletionService
	embeddings         ai.EmbeddingService
	topK               int
	minSimilarity      float64
	maxAnswerTokens    int
	contextTokenBudget int
	countTokens        func(text string) (int, error)
}

// NewQueryClientParams defines the configuration parameters for
// creating a new QueryClient.
//
// TopK caps how many chunks the vector search returns.
// MinSimilarity is the relevance floor; results at or below it are
// discarded even when fewer than TopK remain.
// MaxAnswerTokens, when positive, caps the synthesized answer length.
// ContextTokenBudget bounds the assembled answer context; documents
// are trimmed from the tail until the context fits.
type NewQueryClientParams struct {
	Store              store.GraphStore
	Completions        ai.CompletionService
	Embeddings         ai.EmbeddingService
	TopK               int
	MinSimilarity      float64
	MaxAnswerTokens    int
	ContextTokenBudget int
}

// NewQueryClient creates and returns a new QueryClient configured with
// the provided parameters.
func NewQueryClient(params NewQueryClientParams) (*QueryClient, error) {
	if params.Store == nil {
		return nil, errors.New("store is required")
	}
	if params.Completions == nil {
		return nil, errors.New("completion service is required")
	}
	if params.Embeddings == nil {
		return nil, errors.New("embedding service is required")
	}

	topK := params.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	minSimilarity := params.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = defaultMinSimilarity
	}
	contextTokenBudget := params.ContextTokenBudget
	if contextTokenBudget <= 0 {
		contextTokenBudget = defaultContextTokenBudget
	}

	return &QueryClient{
		store:              params.Store,
		completions:        params.Completions,
		embeddings:         params.Embeddings,
		topK:               topK,
		minSimilarity:      minSimilarity,
		maxAnswerTokens:    params.MaxAnswerTokens,
		contextTokenBudget: contextTokenBudget,
		countTokens:        countPromptTokens,
	}, nil
}
