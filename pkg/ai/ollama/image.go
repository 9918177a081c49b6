package ollama

import (
	"context"

	"github.com/ollama/ollama/api"
)

// DescribeImage sends a vision chat request with the raw image bytes and
// returns the model's textual output for the provided prompt. Ollama
// takes the bytes directly, so the MIME type is not transmitted.
func (c *GraphOllamaClient) DescribeImage(
	ctx context.Context,
	prompt string,
	mimeType string,
	image []byte,
) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.chatModel,
		Messages: []api.Message{
			{Role: "system", Content: prompt},
			{
				Role:    "user",
				Content: "",
				Images:  []api.ImageData{image},
			},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": c.temperature},
	}

	final, err := c.doChat(ctx, req)
	if err != nil {
		return "", err
	}
	return final.Message.Content, nil
}
