package openai

import (
	"sync"
	"time"

	"github.com/studygraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

const (
	defaultDimensions = 1536
	defaultTimeout    = 2 * time.Minute
	maxRequestTries   = 3
)

// GraphOpenAIClient implements the ai.ModelClient interface against any
// OpenAI-compatible API. Hosted gateways such as OpenRouter work through
// the BaseURL parameter.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	chatModel  string
	embedModel string
	embedDim   int

	temperature float64
	maxTokens   int
	timeout     time.Duration

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *openai.Client
}

// NewGraphOpenAIClientParams contains configuration options for creating
// a new GraphOpenAIClient.
//
// ChatModel is used for completions and vision requests, EmbedModel for
// embeddings. EmbedDim fixes the dimensionality of returned vectors;
// longer model output is truncated and shorter output zero-padded.
// Temperature and MaxTokens set per-client generation defaults that
// individual calls may override.
type NewGraphOpenAIClientParams struct {
	ChatModel  string
	EmbedModel string
	EmbedDim   int

	BaseURL string
	ApiKey  string

	Temperature float64
	MaxTokens   int

	MaxConcurrentRequests int64
	RequestTimeout        time.Duration
}

// NewGraphOpenAIClient creates and returns a new GraphOpenAIClient
// configured with the provided parameters.
//
// Example:
//
//	params := openai.NewGraphOpenAIClientParams{
//		ChatModel:  "meta-llama/llama-3.1-8b-instruct",
//		EmbedModel: "text-embedding-3-small",
//		BaseURL:    "https://openrouter.ai/api/v1",
//		ApiKey:     os.Getenv("AI_API_KEY"),
//	}
//	client := openai.NewGraphOpenAIClient(params)
func NewGraphOpenAIClient(
	params NewGraphOpenAIClientParams,
) *GraphOpenAIClient {
	if params.EmbedDim <= 0 {
		params.EmbedDim = defaultDimensions
	}
	if params.MaxConcurrentRequests < 1 {
		params.MaxConcurrentRequests = 1
	}
	if params.RequestTimeout <= 0 {
		params.RequestTimeout = defaultTimeout
	}

	return &GraphOpenAIClient{
		chatModel:  params.ChatModel,
		embedModel: params.EmbedModel,
		embedDim:   params.EmbedDim,

		temperature: params.Temperature,
		maxTokens:   params.MaxTokens,
		timeout:     params.RequestTimeout,

		reqLock: semaphore.NewWeighted(params.MaxConcurrentRequests),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		Client: newOpenaiClient(params.BaseURL, params.ApiKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
