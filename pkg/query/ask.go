package query

import (
	"context"
	"fmt"

	"github.com/studygraph/backend/pkg/logger"
)

// NotFoundAnswer is returned when the question's main concept has no
// entities in the user's graph. The graph is authoritative for found
// versus not found, so no vector search or synthesis runs in that
// case.
const NotFoundAnswer = "I could not find this topic in your uploaded materials."

// AskContext reports how much retrieved material grounded an answer.
type AskContext struct {
	DocumentsFound     int `json:"documents_found"`
	GraphEntities      int `json:"graph_entities"`
	GraphRelationships int `json:"graph_relationships"`
}

// AskResult is the outcome of one question. Success false with the
// not-found answer is a completed run over unknown material, not an
// error.
type AskResult struct {
	Answer  string     `json:"answer"`
	Success bool       `json:"success"`
	Context AskContext `json:"context"`
}

// Ask answers a question from the user's uploaded materials. It
// extracts the question's main concept, resolves the concept's graph
// neighborhood, and when the concept is known merges a vector search
// over the stored chunks into a structured context before synthesizing
// the answer. Optional tracers observe what the run considered and
// used.
func (q *QueryClient) Ask(ctx context.Context, question string, userID string, tracers ...Tracer) (AskResult, error) {
	tracer := MultiTracer(tracers)

	concept, err := q.ExtractMainConcept(ctx, question)
	if err != nil {
		return AskResult{}, err
	}
	RecordExtractedConcept(tracer, concept)
	logger.Debug("[Query][Ask] Extracted main concept", "concept", concept)

	graphContext, err := q.store.GetNeighborhood(ctx, concept, userID)
	if err != nil {
		return AskResult{}, fmt.Errorf("failed to load graph context: %w", err)
	}
	names := make([]string, 0, len(graphContext.Entities))
	for _, entity := range graphContext.Entities {
		names = append(names, entity.Name)
	}
	RecordGraphEntities(tracer, names...)

	if graphContext.Empty() {
		logger.Debug("[Query][Ask] Concept not in graph", "concept", concept)
		return AskResult{Answer: NotFoundAnswer, Success: false}, nil
	}

	// The search query is the extracted concept, not the raw question,
	// so retrieval stays aligned with the graph lookup.
	vectorResults, err := q.VectorSearch(ctx, concept, userID, tracer)
	if err != nil {
		return AskResult{}, err
	}

	structured := BuildStructuredContext(graphContext, vectorResults)
	answer, err := q.SynthesizeAnswer(ctx, question, structured)
	if err != nil {
		return AskResult{}, err
	}

	logger.Debug("[Query][Ask] Synthesized answer",
		"concept", concept,
		"entities", len(graphContext.Entities),
		"relationships", len(graphContext.Relationships),
		"documents", len(vectorResults))

	return AskResult{
		Answer:  answer,
		Success: true,
		Context: AskContext{
			DocumentsFound:     len(vectorResults),
			GraphEntities:      len(graphContext.Entities),
			GraphRelationships: len(graphContext.Relationships),
		},
	}, nil
}
