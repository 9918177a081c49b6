package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/ai"

	"github.com/ollama/ollama/api"
)

const maxEmbedBatchSize = 64

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama.
//
// The returned vector always has the configured dimensionality: longer
// model output is truncated and shorter output zero-padded. Blank input
// maps to the zero vector without an API call.
func (c *GraphOllamaClient) GenerateEmbedding(
	ctx context.Context,
	input string,
) ([]float32, error) {
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
// requests against the Ollama embed endpoint. Result order matches input
// order.
func (c *GraphOllamaClient) GenerateEmbeddings(
	ctx context.Context,
	inputs []string,
) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	idxMap := make([]int, 0, len(inputs))
	nonEmpty := make([]string, 0, len(inputs))
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in) == "" {
			out[i] = make([]float32, c.embedDim)
			continue
		}
		idxMap = append(idxMap, i)
		nonEmpty = append(nonEmpty, in)
	}

	for start := 0; start < len(nonEmpty); start += maxEmbedBatchSize {
		end := min(start+maxEmbedBatchSize, len(nonEmpty))
		vecs, err := c.generateEmbeddingBatch(ctx, nonEmpty[start:end])
		if err != nil {
			return nil, err
		}
		for i, vec := range vecs {
			out[idxMap[start+i]] = vec
		}
	}
	return out, nil
}

func (c *GraphOllamaClient) generateEmbeddingBatch(
	ctx context.Context,
	inputs []string,
) ([][]float32, error) {
	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.EmbedRequest{
		Model: c.embedModel,
		Input: inputs,
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := util.RetryWithContext(rCtx, maxRequestTries,
		func(rc context.Context) (*api.EmbedResponse, error) {
			return c.Client.Embed(rc, req)
		})
	if err != nil {
		return nil, err
	}

	metrics := ai.ModelMetrics{
		EmbeddingRequests: 1,
		InputTokens:       res.PromptEvalCount,
		TotalTokens:       res.PromptEvalCount,
		DurationMs:        res.TotalDuration.Milliseconds(),
	}
	c.modifyMetrics(metrics)

	if len(res.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want %d", len(res.Embeddings), len(inputs))
	}

	out := make([][]float32, len(inputs))
	for i, raw := range res.Embeddings {
		out[i] = resizeVector(raw, c.embedDim)
	}
	return out, nil
}

func resizeVector(raw []float32, dim int) []float32 {
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
