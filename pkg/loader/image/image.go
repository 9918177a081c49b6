// Package image transcribes study-material images with a vision
// model.
package image

import (
	"bytes"
	"context"
	"net/http"

	"github.com/studygraph/backend/pkg/ai"
)

// Extractor sends the raw image to the completion service's vision
// endpoint with the transcription prompt and returns the model's text.
type Extractor struct {
	completions ai.CompletionService
}

func New(completions ai.CompletionService) Extractor {
	return Extractor{completions: completions}
}

func (e Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	return e.completions.DescribeImage(ctx, ai.TranscribePrompt, detectImageMIME(data), data)
}

// detectImageMIME sniffs the image content type. TIFF is not in the
// stdlib sniff table, so its magic numbers are checked directly.
func detectImageMIME(data []byte) string {
	mimeType := http.DetectContentType(data)
	if mimeType != "application/octet-stream" {
		return mimeType
	}
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return "image/tiff"
	}
	return mimeType
}
