package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/studygraph/backend/pkg/ai"
)

// ExtractMainConcept distills a question down to the single academic
// concept it is about. The concept is the lookup key for both the
// graph neighborhood and the vector search, so the rest of the
// pipeline retrieves by topic rather than by question phrasing.
//
// The returned concept may be empty when the model produces nothing
// usable; callers treat that like any other unknown concept.
func (q *QueryClient) ExtractMainConcept(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(ai.ConceptPrompt, question)

	response, err := q.completions.GenerateCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to extract main concept: %w", err)
	}

	return strings.TrimSpace(response), nil
}
