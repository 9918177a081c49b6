package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/studygraph/backend/internal/util"
	"github.com/studygraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// DescribeImage sends a vision request with the raw image bytes and
// returns the model's textual output for the provided prompt. The image
// is transmitted as a base64 data URL built from the given MIME type.
func (c *GraphOpenAIClient) DescribeImage(
	ctx context.Context,
	prompt string,
	mimeType string,
	image []byte,
) (string, error) {
	url := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: url,
				}),
			}),
		},
	}

	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	response, err := util.RetryWithContext(rCtx, maxRequestTries,
		func(rc context.Context) (*openai.ChatCompletion, error) {
			return c.Client.Chat.Completions.New(rc, body)
		})
	if err != nil {
		return "", err
	}
	duration := time.Since(start).Milliseconds()

	metrics := ai.ModelMetrics{
		CompletionRequests: 1,
		InputTokens:        int(response.Usage.PromptTokens),
		OutputTokens:       int(response.Usage.CompletionTokens),
		TotalTokens:        int(response.Usage.TotalTokens),
		DurationMs:         duration,
	}
	c.modifyMetrics(metrics)

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response from model")
	}
	return response.Choices[0].Message.Content, nil
}
