package ollama

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/studygraph/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

const (
	defaultDimensions = 1024
	defaultTimeout    = 5 * time.Minute
	maxRequestTries   = 3
)

// GraphOllamaClient implements the ai.ModelClient interface using Ollama
// as the backend. It supports text generation, embeddings, and image
// transcription via locally-hosted models.
type GraphOllamaClient struct {
	chatModel  string
	embedModel string
	embedDim   int

	temperature float64
	maxTokens   int
	timeout     time.Duration

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

// NewGraphOllamaClientParams contains configuration options for creating a new GraphOllamaClient.
type NewGraphOllamaClientParams struct {
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

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewGraphOllamaClient creates a new Ollama-based AI client with the specified configuration.
// It connects to the Ollama server at the given BaseURL (or the default if empty)
// and uses the configured chat and embedding models.
func NewGraphOllamaClient(
	params NewGraphOllamaClientParams,
) (*GraphOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	if params.EmbedDim <= 0 {
		params.EmbedDim = defaultDimensions
	}
	if params.MaxConcurrentRequests < 1 {
		params.MaxConcurrentRequests = 1
	}
	if params.RequestTimeout <= 0 {
		params.RequestTimeout = defaultTimeout
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	cli := api.NewClient(u, httpClient)

	return &GraphOllamaClient{
		chatModel:  params.ChatModel,
		embedModel: params.EmbedModel,
		embedDim:   params.EmbedDim,

		temperature: params.Temperature,
		maxTokens:   params.MaxTokens,
		timeout:     params.RequestTimeout,

		reqLock: semaphore.NewWeighted(params.MaxConcurrentRequests),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		baseURL:    u,
		apiKey:     params.ApiKey,
		httpClient: httpClient,

		Client: cli,
	}, nil
}
