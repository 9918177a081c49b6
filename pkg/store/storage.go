package store

import (
	"context"

	"github.com/studygraph/backend/pkg/common"
)

// StoredChunk is a persisted document chunk. The ID is a content hash
// so re-ingesting the same text overwrites rather than duplicates. The
// embedding may be empty for rows written before embedding persistence
// was enabled; the retrieval layer re-embeds those on demand.
type StoredChunk struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	SourceHeading string    `json:"source_heading"`
	SequenceIndex int       `json:"sequence_index"`
	Embedding     []float32 `json:"-"`
}

// GraphStore defines the persistence contract for per-user knowledge
// graphs: partition lifecycle, idempotent entity/relationship/chunk
// upserts, the one-hop neighborhood read the query pipeline depends on,
// and the inspection and export reads.
//
// All operations scope to a single user partition. Implementations must
// treat the user id as data (a filter value), never as part of query
// structure.
type GraphStore interface {
	EnsurePartition(ctx context.Context, userID string) error
	DeletePartition(ctx context.Context, userID string) error

	UpsertEntities(ctx context.Context, entities []common.Entity, userID string) error
	UpsertRelationships(ctx context.Context, relationships []common.Relationship, userID string) error
	UpsertChunk(ctx context.Context, chunk StoredChunk, userID string) error

	GetNeighborhood(ctx context.Context, name string, userID string) (common.GraphContext, error)
	ListEntities(ctx context.Context, userID string, limit int) ([]common.Entity, error)
	ListRelationships(ctx context.Context, userID string, limit int) ([]common.Relationship, error)
	ListChunks(ctx context.Context, userID string) ([]StoredChunk, error)

	ExportGraph(ctx context.Context, userID string) (common.GraphData, error)
}
