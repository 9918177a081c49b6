package util

import (
	"crypto/sha256"
	"encoding/hex"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ChunkID derives a stable identifier from chunk text. Re-ingesting the
// same text produces the same ID, so chunk upserts stay idempotent
// across repeated uploads of the same document.
func ChunkID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// RunID returns a short random identifier correlating the log lines of
// a single ingestion or query run.
func RunID() string {
	return gonanoid.Must()
}
