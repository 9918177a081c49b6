package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"golang.org/x/sync/errgroup"
)

const maxEmbedBatchSize = 128

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model.
//
// The returned vector always has the configured dimensionality: longer
// model output is truncated and shorter output zero-padded. Blank input
// maps to the zero vector without an API call.
//
// Example:
//
//	embedding, err := client.GenerateEmbedding(ctx, "Graph RAG systems")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("Embedding length:", len(embedding))
func (c *GraphOpenAIClient) GenerateEmbedding(ctx context.Context, input string) ([]float32, error) {
	res, err := c.GenerateEmbeddings(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(res))
	}
	return res[0], nil
}

// GenerateEmbeddings creates embeddings for multiple inputs, batching the
// API requests. Result order matches input order. Large input sets are
// split into batch requests that run concurrently; the client's internal
// semaphore limits actual parallelism.
func (c *GraphOpenAIClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	idxMap, nonEmpty, out := normalizeEmbeddingInputs(inputs, c.embedDim)
	if len(nonEmpty) == 0 {
		return out, nil
	}

	eg, ectx := errgroup.WithContext(ctx)
	for start := 0; start < len(nonEmpty); start += maxEmbedBatchSize {
		end := min(start+maxEmbedBatchSize, len(nonEmpty))
		batchStart := start
		batch := nonEmpty[start:end]
		eg.Go(func() error {
			vecs, err := c.generateEmbeddingBatch(ectx, batch)
			if err != nil {
				return err
			}
			for i, vec := range vecs {
				out[idxMap[batchStart+i]] = vec
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeEmbeddingInputs(inputs []string, dim int) (idxMap []int, nonEmpty []string, out [][]float32) {
	idxMap = make([]int, 0, len(inputs))
	nonEmpty = make([]string, 0, len(inputs))
	out = make([][]float32, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in) == "" {
			out[i] = make([]float32, dim)
			continue
		}
		idxMap = append(idxMap, i)
		nonEmpty = append(nonEmpty, in)
	}
	return idxMap, nonEmpty, out
}

func (c *GraphOpenAIClient) generateEmbeddingBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model: c.embedModel,
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	response, err := util.RetryWithContext(rCtx, maxRequestTries,
		func(rc context.Context) (*openai.CreateEmbeddingResponse, error) {
			return c.Client.Embeddings.New(rc, body)
		})
	if err != nil {
		return nil, err
	}
	duration := time.Since(start).Milliseconds()

	metrics := ai.ModelMetrics{
		EmbeddingRequests: 1,
		InputTokens:       int(response.Usage.PromptTokens),
		TotalTokens:       int(response.Usage.TotalTokens),
		DurationMs:        duration,
	}
	c.modifyMetrics(metrics)

	if len(response.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want %d", len(response.Data), len(inputs))
	}

	out := make([][]float32, len(inputs))
	for _, embedding := range response.Data {
		dataIdx := int(embedding.Index)
		if dataIdx < 0 || dataIdx >= len(inputs) {
			return nil, fmt.Errorf("embedding index out of range: %d", embedding.Index)
		}
		out[dataIdx] = resizeVector(embedding.Embedding, c.embedDim)
	}
	for i := range out {
		if out[i] == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return out, nil
}

func resizeVector(raw []float64, dim int) []float32 {
	vec := make([]float32, 0, dim)
	for _, v := range raw {
		if len(vec) >= dim {
			break
		}
		vec = append(vec, float32(v))
	}
	if len(vec) < dim {
		padded := make([]float32, dim)
		copy(padded, vec)
		vec = padded
	}
	return vec
}
