package workflow

import (
	"context"
	"errors"

	"github.com/studygraph/backend/pkg/graph"
	"github.com/studygraph/backend/pkg/loader"
	"github.com/studygraph/backend/pkg/query"
	"github.com/studygraph/backend/pkg/store"
)

// TextIngestor runs the ingestion pipeline over raw document text.
// *graph.GraphClient implements it.
type TextIngestor interface {
	ProcessText(ctx context.Context, text string, userID string) (graph.ProcessResult, error)
}

// QuestionAnswerer answers a question from a user's stored materials.
// *query.QueryClient implements it.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string, userID string, tracers ...query.Tracer) (query.AskResult, error)
}

// Controller routes an incoming action through the matching pipeline
// and normalizes every outcome into the same workflow state shape. It
// holds no per-request state; one controller serves all requests.
//
// A Controller should be created using NewController.
type Controller struct {
	loader   loader.TextExtractor
	ingestor TextIngestor
	answerer QuestionAnswerer
	store    store.GraphStore

	table map[State]handlerFunc
}

// NewControllerParams defines the configuration parameters for
// creating a new Controller.
type NewControllerParams struct {
	Loader   loader.TextExtractor
	Ingestor TextIngestor
	Answerer QuestionAnswerer
	Store    store.GraphStore
}

// NewController creates and returns a new Controller configured with
// the provided parameters.
func NewController(params NewControllerParams) (*Controller, error) {
	if params.Loader == nil {
		return nil, errors.New("text extractor is required")
	}
	if params.Ingestor == nil {
		return nil, errors.New("ingestor is required")
	}
	if params.Answerer == nil {
		return nil, errors.New("answerer is required")
	}
	if params.Store == nil {
		return nil, errors.New("store is required")
	}

	c := &Controller{
		loader:   params.Loader,
		ingestor: params.Ingestor,
		answerer: params.Answerer,
		store:    params.Store,
	}
	c.table = map[State]handlerFunc{
		StateUpload:    c.handleUpload,
		StateExtract:   c.handleExtract,
		StateQuery:     c.handleQuery,
		StateVisualize: c.handleVisualize,
		StateError:     c.handleError,
	}
	return c, nil
}
