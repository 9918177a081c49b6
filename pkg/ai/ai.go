package ai

import "context"

// GenerateOptions holds per-request configuration for completion calls.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	MaxTokens     int      // Upper bound on generated tokens, 0 = provider default
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Lower values (e.g., 0.1) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens returns a GenerateOption that caps the number of tokens
// the model may generate for the request.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// ModelMetrics aggregates usage across every request a client has served
// since construction or the last reset.
type ModelMetrics struct {
	CompletionRequests int   `json:"completion_requests"`
	EmbeddingRequests  int   `json:"embedding_requests"`
	InputTokens        int   `json:"input_tokens"`
	OutputTokens       int   `json:"output_tokens"`
	TotalTokens        int   `json:"total_tokens"`
	DurationMs         int64 `json:"duration_ms"`
}

// CompletionService is the synchronous text-generation contract the
// pipelines depend on. Implementations must honor ctx cancellation and
// apply their own per-request timeout; no streaming is exposed.
type CompletionService interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error
	DescribeImage(
		ctx context.Context,
		prompt string,
		mimeType string,
		image []byte,
	) (string, error)
}

// EmbeddingService turns texts into fixed-dimension vectors. A
// deployment must use one embedding model version throughout: vectors
// from different models are not comparable, and the retrieval layer
// assumes they are.
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, input string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)
}

// ModelClient bundles both model contracts with metrics access. The
// provider clients in the openai and ollama subpackages implement it.
type ModelClient interface {
	CompletionService
	EmbeddingService
	ResetMetrics()
	GetMetrics() ModelMetrics
}
