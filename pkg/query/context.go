package query

import (
	"fmt"

	"github.com/studygraph/backend/pkg/common"
)

// documentExcerptChars caps how much of each retrieved chunk is quoted
// into the answer context.
const documentExcerptChars = 500

// StructuredContext groups retrieval output into the sections the
// answer prompt presents to the model.
type StructuredContext struct {
	Concepts      []string `json:"concepts"`
	Relationships []string `json:"relationships"`
	Documents     []string `json:"documents"`
}

// BuildStructuredContext renders a graph neighborhood and ranked
// chunks into prompt sections: concept names in neighborhood order,
// edges as "from type to" lines, and chunk excerpts in rank order.
func BuildStructuredContext(graphContext common.GraphContext, vectorResults []VectorResult) StructuredContext {
	structured := StructuredContext{
		Concepts:      make([]string, 0, len(graphContext.Entities)),
		Relationships: make([]string, 0, len(graphContext.Relationships)),
		Documents:     make([]string, 0, len(vectorResults)),
	}

	for _, entity := range graphContext.Entities {
		structured.Concepts = append(structured.Concepts, entity.Name)
	}
	for _, relationship := range graphContext.Relationships {
		structured.Relationships = append(structured.Relationships,
			fmt.Sprintf("%s %s %s", relationship.From, relationship.Type, relationship.To))
	}
	for _, result := range vectorResults {
		structured.Documents = append(structured.Documents, truncateRunes(result.Chunk.Text, documentExcerptChars))
	}

	return structured
}

// truncateRunes cuts a string to at most limit runes without splitting
// a multi-byte character.
func truncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	seen := 0
	for i := range text {
		if seen == limit {
			return text[:i]
		}
		seen++
	}
	return text
}
