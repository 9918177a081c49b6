package query

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/store"
)

func TestBuildStructuredContext(t *testing.T) {
	graphContext := common.GraphContext{
		Entities: []common.Entity{
			{Name: "Marketing Mix", Type: common.EntityTypeFramework},
			{Name: "Promotion", Type: common.EntityTypeConcept},
		},
		Relationships: []common.Relationship{
			{From: "Marketing Mix", To: "Promotion", Type: common.RelationTypeHasComponent},
		},
	}
	vectorResults := []VectorResult{
		{Chunk: store.StoredChunk{ID: "a", Text: "The marketing mix has four parts."}, Similarity: 0.9},
		{Chunk: store.StoredChunk{ID: "b", Text: "Promotion covers advertising."}, Similarity: 0.8},
	}

	structured := BuildStructuredContext(graphContext, vectorResults)

	if want := []string{"Marketing Mix", "Promotion"}; !equalStrings(structured.Concepts, want) {
		t.Errorf("Concepts = %v, expected %v", structured.Concepts, want)
	}
	if want := []string{"Marketing Mix has_component Promotion"}; !equalStrings(structured.Relationships, want) {
		t.Errorf("Relationships = %v, expected %v", structured.Relationships, want)
	}
	if want := []string{"The marketing mix has four parts.", "Promotion covers advertising."}; !equalStrings(structured.Documents, want) {
		t.Errorf("Documents = %v, expected %v", structured.Documents, want)
	}
}

func TestBuildStructuredContextTruncatesDocuments(t *testing.T) {
	long := strings.Repeat("ü", 620)
	structured := BuildStructuredContext(common.GraphContext{}, []VectorResult{
		{Chunk: store.StoredChunk{ID: "a", Text: long}},
	})

	if len(structured.Documents) != 1 {
		t.Fatalf("Documents length = %d, expected 1", len(structured.Documents))
	}
	got := structured.Documents[0]
	if count := utf8.RuneCountInString(got); count != documentExcerptChars {
		t.Errorf("excerpt rune count = %d, expected %d", count, documentExcerptChars)
	}
	if !utf8.ValidString(got) {
		t.Errorf("excerpt is not valid UTF-8")
	}
	if !strings.HasPrefix(long, got) {
		t.Errorf("excerpt is not a prefix of the source text")
	}
}

func TestBuildStructuredContextEmptyInput(t *testing.T) {
	structured := BuildStructuredContext(common.GraphContext{}, nil)
	if structured.Concepts == nil || structured.Relationships == nil || structured.Documents == nil {
		t.Errorf("sections should be empty slices, got %v / %v / %v",
			structured.Concepts, structured.Relationships, structured.Documents)
	}
	if len(structured.Concepts)+len(structured.Relationships)+len(structured.Documents) != 0 {
		t.Errorf("expected all sections empty, got %+v", structured)
	}
}

func TestBuildAnswerContext(t *testing.T) {
	structured := StructuredContext{
		Concepts:      []string{"Marketing Mix", "Promotion"},
		Relationships: []string{"Marketing Mix has_component Promotion"},
		Documents:     []string{"doc one", "doc two"},
	}

	got := buildAnswerContext(structured)
	want := "Concepts:\nMarketing Mix, Promotion\n\n" +
		"Relationships:\nMarketing Mix has_component Promotion\n\n" +
		"Documents:\ndoc one\ndoc two"
	if got != want {
		t.Errorf("buildAnswerContext() = %q, expected %q", got, want)
	}
}

func TestBuildAnswerContextOmitsEmptySections(t *testing.T) {
	tests := []struct {
		name       string
		structured StructuredContext
		want       string
	}{
		{
			name:       "concepts only",
			structured: StructuredContext{Concepts: []string{"Inflation"}},
			want:       "Concepts:\nInflation\n\n",
		},
		{
			name:       "documents only",
			structured: StructuredContext{Documents: []string{"a passage"}},
			want:       "Documents:\na passage",
		},
		{
			name:       "all empty",
			structured: StructuredContext{},
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildAnswerContext(tt.structured); got != tt.want {
				t.Errorf("buildAnswerContext() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
