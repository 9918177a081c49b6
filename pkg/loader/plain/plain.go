// Package plain decodes text uploads (txt, md).
package plain

import (
	"context"
	"strings"
)

type Extractor struct{}

func New() Extractor {
	return Extractor{}
}

// Extract decodes the upload as UTF-8. Invalid byte sequences are
// dropped rather than failing the upload.
func (Extractor) Extract(_ context.Context, data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
