package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *GraphOllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := c.defaultOptions()
	for _, o := range opts {
		o(&options)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: buildMessages(options.SystemPrompts, prompt),
		Stream:   &stream,
		Options:  generationOptions(options),
	}

	if err := ensureContextWindow(req, prompt); err != nil {
		return "", err
	}

	final, err := c.doChat(ctx, req)
	if err != nil {
		return "", err
	}
	return final.Message.Content, nil
}

// GenerateCompletionWithFormat enforces a JSON schema and unmarshals into out.
func (c *GraphOllamaClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	if out == nil {
		return errors.New("out must be a non-nil pointer")
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}

	schemaObj := ai.GenerateSchema(out)
	formatBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return err
	}
	var format json.RawMessage = formatBytes

	options := c.defaultOptions()
	for _, o := range opts {
		o(&options)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: buildMessages(options.SystemPrompts, prompt),
		Stream:   &stream,
		Format:   format,
		Options:  generationOptions(options),
	}

	if err := ensureContextWindow(req, prompt); err != nil {
		return err
	}

	final, err := c.doChat(ctx, req)
	if err != nil {
		return err
	}
	return ai.UnmarshalFlexible(final.Message.Content, out)
}

func (c *GraphOllamaClient) defaultOptions() ai.GenerateOptions {
	return ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
}

func buildMessages(systemPrompts []string, prompt string) []api.Message {
	msgs := make([]api.Message, 0, len(systemPrompts)+1)
	for _, sp := range systemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	return append(msgs, api.Message{Role: "user", Content: prompt})
}

func generationOptions(options ai.GenerateOptions) map[string]any {
	out := map[string]any{"temperature": options.Temperature}
	if options.MaxTokens > 0 {
		out["num_predict"] = options.MaxTokens
	}
	return out
}

// Ollama silently truncates prompts that exceed the model's default
// context window. Raise num_ctx when the estimated token count would
// not fit.
func ensureContextWindow(req *api.ChatRequest, prompt string) error {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return err
	}
	tokens := 200 + len(enc.Encode(prompt, nil, nil))
	if tokens > 4096 {
		req.Options["num_ctx"] = tokens
	}
	return nil
}

func (c *GraphOllamaClient) doChat(ctx context.Context, req *api.ChatRequest) (api.ChatResponse, error) {
	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return api.ChatResponse{}, err
	}
	defer c.reqLock.Release(1)

	final, err := util.RetryWithContext(rCtx, maxRequestTries,
		func(rc context.Context) (api.ChatResponse, error) {
			var acc api.ChatResponse
			if err := c.Client.Chat(rc, req, func(cr api.ChatResponse) error {
				acc.Message.Content += cr.Message.Content
				if cr.Done {
					acc.Done = true
					acc.Metrics = cr.Metrics
				}
				return nil
			}); err != nil {
				return api.ChatResponse{}, err
			}
			return acc, nil
		})
	if err != nil {
		return api.ChatResponse{}, err
	}

	metrics := ai.ModelMetrics{
		CompletionRequests: 1,
		InputTokens:        final.Metrics.PromptEvalCount,
		OutputTokens:       final.Metrics.EvalCount,
		TotalTokens:        final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:         final.Metrics.TotalDuration.Milliseconds(),
	}
	c.modifyMetrics(metrics)

	return final, nil
}
