package loader

import (
	"context"
	"fmt"
	"strings"
)

// minLineLength is the shortest cleaned line kept; anything at or
// below it is treated as extraction noise.
const minLineLength = 2

// TextExtractor turns an uploaded file into ingestible plain text plus
// the detected file type. Empty text with a nil error means the file
// was readable but carried nothing extractable; callers treat that as
// a failed extraction.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (text string, fileType string, err error)
}

// Extractor extracts plain text from one file format.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type registration struct {
	extractor Extractor
	fileType  string
}

// FileLoader routes uploads to the extractor registered for their
// filename extension and normalizes the extracted text.
//
// A FileLoader should be created using NewFileLoader and configured
// with Register before first use; it is safe for concurrent use
// afterwards.
type FileLoader struct {
	formats map[string]registration
}

// NewFileLoader creates an empty FileLoader.
func NewFileLoader() *FileLoader {
	return &FileLoader{formats: make(map[string]registration)}
}

// Register binds an extractor to one or more filename extensions
// (without the dot). fileType is what ExtractText reports for those
// extensions. Registering an extension again replaces the previous
// binding.
func (l *FileLoader) Register(extractor Extractor, fileType string, extensions ...string) {
	for _, ext := range extensions {
		l.formats[strings.ToLower(ext)] = registration{extractor: extractor, fileType: fileType}
	}
}

// ExtractText extracts and cleans the text content of an uploaded
// file. Unsupported extensions are an error; a supported file that
// yields no text returns empty text without an error.
func (l *FileLoader) ExtractText(ctx context.Context, data []byte, filename string) (string, string, error) {
	ext := Extension(filename)
	reg, ok := l.formats[ext]
	if !ok {
		return "", "", fmt.Errorf("unsupported file type: %s", ext)
	}

	text, err := reg.extractor.Extract(ctx, data)
	if err != nil {
		return "", reg.fileType, fmt.Errorf("failed to extract %s text: %w", reg.fileType, err)
	}
	return CleanText(text), reg.fileType, nil
}

// Extension returns the lowercase extension of a filename without the
// dot. A name without a dot returns the whole name lowercased.
func Extension(filename string) string {
	lower := strings.ToLower(filename)
	if i := strings.LastIndexByte(lower, '.'); i >= 0 {
		return lower[i+1:]
	}
	return lower
}

// CleanText normalizes extracted text for ingestion: runs of spaces
// and tabs collapse to one space inside each line, line edges are
// trimmed, and lines too short to carry content are dropped. Line
// breaks survive because the chunker's heading detection depends on
// them.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) <= minLineLength {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}
