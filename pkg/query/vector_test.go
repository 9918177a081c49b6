package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/studygraph/backend/pkg/ai"
	"github.com/studygraph/backend/pkg/store"
	"github.com/studygraph/backend/pkg/store/memory"
)

// fakeModel serves canned completions and embeddings while counting
// calls, standing in for both AI services.
type fakeModel struct {
	mu          sync.Mutex
	respond     func(prompt string) (string, error)
	vectors     map[string][]float32
	prompts     []string
	embedTexts  []string
	batchCalls  int
	singleCalls int
}

func (f *fakeModel) GenerateCompletion(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(prompt)
	}
	return "", nil
}

func (f *fakeModel) GenerateCompletionWithFormat(_ context.Context, _, _, _ string, _ any, _ ...ai.GenerateOption) error {
	return errors.New("structured output not expected in query tests")
}

func (f *fakeModel) DescribeImage(_ context.Context, _, _ string, _ []byte) (string, error) {
	return "", errors.New("image description not expected in query tests")
}

func (f *fakeModel) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.singleCalls++
	f.embedTexts = append(f.embedTexts, text)
	f.mu.Unlock()
	return f.vectorFor(text), nil
}

func (f *fakeModel) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batchCalls++
	f.embedTexts = append(f.embedTexts, texts...)
	f.mu.Unlock()
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, f.vectorFor(text))
	}
	return out, nil
}

func (f *fakeModel) vectorFor(text string) []float32 {
	if vector, ok := f.vectors[text]; ok {
		return vector
	}
	return []float32{1, 0}
}

func newQueryTestClient(t *testing.T, model *fakeModel, st store.GraphStore, params NewQueryClientParams) *QueryClient {
	t.Helper()
	params.Store = st
	params.Completions = model
	params.Embeddings = model
	client, err := NewQueryClient(params)
	if err != nil {
		t.Fatalf("NewQueryClient() error = %v", err)
	}
	// Whitespace token counting keeps tests off the real encoding
	// tables.
	client.countTokens = func(text string) (int, error) {
		return len(strings.Fields(text)), nil
	}
	return client
}

func seedChunks(t *testing.T, st store.GraphStore, userID string, chunks ...store.StoredChunk) {
	t.Helper()
	ctx := context.Background()
	if err := st.EnsurePartition(ctx, userID); err != nil {
		t.Fatalf("EnsurePartition() error = %v", err)
	}
	for _, chunk := range chunks {
		if err := st.UpsertChunk(ctx, chunk, userID); err != nil {
			t.Fatalf("UpsertChunk(%q) error = %v", chunk.ID, err)
		}
	}
}

func TestVectorSearchRanksByCosine(t *testing.T) {
	st := memory.NewGraphMemoryStore()
	seedChunks(t, st, "u1",
		store.StoredChunk{ID: "a", Text: "aligned", SequenceIndex: 0, Embedding: []float32{1, 0}},
		store.StoredChunk{ID: "b", Text: "diagonal", SequenceIndex: 1, Embedding: []float32{0.5, 0.5}},
		store.StoredChunk{ID: "c", Text: "orthogonal", SequenceIndex: 2, Embedding: []float32{0, 1}},
		store.StoredChunk{ID: "d", Text: "mostly off", SequenceIndex: 3, Embedding: []float32{0.1, 0.9}},
	)
	model := &fakeModel{vectors: map[string][]float32{"query": {1, 0}}}
	client := newQueryTestClient(t, model, st, NewQueryClientParams{})

	results, err := client.VectorSearch(context.Background(), "query", "u1")
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}

	wantOrder := []string{"a", "b", "d"}
	if len(results) != len(wantOrder) {
		t.Fatalf("VectorSearch() returned %d results, expected %d", len(results), len(wantOrder))
	}
	for i, want := range wantOrder {
		if results[i].Chunk.ID != want {
			t.Errorf("result %d = %q, expected %q", i, results[i].Chunk.ID, want)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not in descending order at %d: %f > %f", i, results[i].Similarity, results[i-1].Similarity)
		}
	}
}

func TestVectorSearchRelevanceFloor(t *testing.T) {
	st := memory.NewGraphMemoryStore()
	seedChunks(t, st, "u1",
		store.StoredChunk{ID: "a", Text: "aligned", SequenceIndex: 0, Embedding: []float32{1, 0}},
		store.StoredChunk{ID: "b", Text: "diagonal", SequenceIndex: 1, Embedding: []float32{0.5, 0.5}},
		store.StoredChunk{ID: "d", Text: "mostly off", SequenceIndex: 2, Embedding: []float32{0.1, 0.9}},
	)
	model := &fakeModel{vectors: map[string][]float32{"query": {1, 0}}}
	client := newQueryTestClient(t, model, st, NewQueryClientParams{MinSimilarity: 0.5})

	results, err := client.VectorSearch(context.Background(), "query", "u1")
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}

	// b scores ~0.707 and survives; d scores ~0.110 and is cut.
	if len(results) != 2 {
		t.Fatalf("VectorSearch() returned %d results, expected 2", len(results))
	}
	if results[0].Chunk.ID != "a" || results[1].Chunk.ID != "b" {
		t.Errorf("results = [%q, %q], expected [a, b]", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestVectorSearchTopKCap(t *testing.T) {
	st := memory.NewGraphMemoryStore()
	seedChunks(t, st, "u1",
		store.StoredChunk{ID: "a", Text: "one", SequenceIndex: 0, Embedding: []float32{1, 0}},
		store.StoredChunk{ID: "b", Text: "two", SequenceIndex: 1, Embedding: []float32{0.9, 0.1}},
		store.StoredChunk{ID: "c", Text: "three", SequenceIndex: 2, Embedding: []float32{0.8, 0.2}},
	)
	model := &fakeModel{vectors: map[string][]float32{"query": {1, 0}}}
	client := newQueryTestClient(t, model, st, NewQueryClientParams{TopK: 2})

	results, err := client.VectorSearch(context.Background(), "query", "u1")
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("VectorSearch() returned %d results, expected 2", len(results))
	}
	if results[0].Chunk.ID != "a" || results[1].Chunk.ID != "b" {
		t.Errorf("results = [%q, %q], expected [a, b]", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestVectorSearchEmptyStore(t *testing.T) {
	st := memory.NewGraphMemoryStore()
	if err := st.EnsurePartition(context.Background(), "u1"); err != nil {
		t.Fatalf("EnsurePartition() error = %v", err)
	}
	model := &fakeModel{}
	client := newQueryTestClient(t, model, st, NewQueryClientParams{})

	results, err := client.VectorSearch(context.Background(), "query", "u1")
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("VectorSearch() returned %d results, expected none", len(results))
	}
	if model.singleCalls != 0 || model.batchCalls != 0 {
		t.Errorf("embedding service called %d+%d times for an empty store", model.singleCalls, model.batchCalls)
	}
}

func TestVectorSearchTiesKeepStoredOrder(t *testing.T) {
	st := memory.NewGraphMemoryStore()
	seedChunks(t, st, "u1",
		store.StoredChunk{ID: "first", Text: "same", SequenceIndex: 0, Embedding: []float32{1, 0}},
		store.StoredChunk{ID: "second", Text: "same again", SequenceIndex: 1, Embedding: []float32{1, 0}},
	)
	model := &fakeModel{vectors: map[string][]float32{"query": {1, 0}}}
	client := newQueryTestClient(t, model, st, NewQueryClientParams{})

	results, err := client.VectorSearch(context.Background(), "query", "u1")
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("VectorSearch() returned %d results, expected 2", len(results))
	}
	if results[0].Chunk.ID != "first" || results[1].Chunk.ID != "second" {
		t.Errorf("equal scores reordered: [%q, %q]", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestVectorSearchBackfillsMissingEmbeddings(t *testing.T) {
	st := memory.NewGraphMemoryStore()
	seedChunks(t, st, "u1",
		store.StoredChunk{ID: "stored", Text: "has embedding", SequenceIndex: 0, Embedding: []float32{0.5, 0.5}},
		store.StoredChunk{ID: "bare", Text: "no embedding yet", SequenceIndex: 1},
	)
	model := &fakeModel{vectors: map[string][]float32{
		"query":            {1, 0},
		"no embedding yet": {1, 0},
	}}
	client := newQueryTestClient(t, model, st, NewQueryClientParams{})

	results, err := client.VectorSearch(context.Background(), "query", "u1")
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}

	if model.batchCalls != 1 {
		t.Errorf("batch embedding calls = %d, expected 1", model.batchCalls)
	}
	if len(results) != 2 {
		t.Fatalf("VectorSearch() returned %d results, expected 2", len(results))
	}
	// The backfilled chunk matches the query exactly and outranks the
	// stored one.
	if results[0].Chunk.ID != "bare" {
		t.Errorf("top result = %q, expected the backfilled chunk", results[0].Chunk.ID)
	}
}
