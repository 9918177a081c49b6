package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultMaxRetries = 3

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// GraphDBStore implements the store.GraphStore interface on PostgreSQL
// with pgvector for chunk embeddings. All rows carry the owning user id
// as a plain column and every query filters on it; tenant identity is
// never interpolated into SQL text.
type GraphDBStore struct {
	conn       pgxIConn
	maxRetries int
}

type GraphDBStoreOption func(*GraphDBStore)

// WithMaxRetries overrides how often idempotent write statements are
// attempted before the error is returned.
func WithMaxRetries(n int) GraphDBStoreOption {
	return func(s *GraphDBStore) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// NewGraphDBStore creates a GraphDBStore on an existing database
// connection, typically a *pgxpool.Pool.
func NewGraphDBStore(conn pgxIConn, opts ...GraphDBStoreOption) *GraphDBStore {
	s := &GraphDBStore{
		conn:       conn,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
