package query

import (
	"context"
	"strings"
	"testing"

	"github.com/studygraph/backend/pkg/store/memory"
)

func TestFitContextToBudgetTrimsTailDocuments(t *testing.T) {
	model := &fakeModel{}
	client := newQueryTestClient(t, model, memory.NewGraphMemoryStore(), NewQueryClientParams{
		ContextTokenBudget: 40,
	})

	structured := StructuredContext{
		Concepts: []string{"Inflation"},
		Documents: []string{
			"first " + strings.Repeat("alpha ", 20),
			"second " + strings.Repeat("bravo ", 20),
			"third " + strings.Repeat("charlie ", 20),
		},
	}

	fitted, err := client.fitContextToBudget(structured)
	if err != nil {
		t.Fatalf("fitContextToBudget() error = %v", err)
	}

	if len(fitted.Documents) != 1 {
		t.Fatalf("kept %d documents, expected 1", len(fitted.Documents))
	}
	if !strings.HasPrefix(fitted.Documents[0], "first") {
		t.Errorf("kept %q, expected the top-ranked document", fitted.Documents[0])
	}
	if len(fitted.Concepts) != 1 {
		t.Errorf("concepts were trimmed: %v", fitted.Concepts)
	}
	// The caller's slice is untouched.
	if len(structured.Documents) != 3 {
		t.Errorf("input documents mutated to length %d", len(structured.Documents))
	}
}

func TestFitContextToBudgetKeepsLastDocument(t *testing.T) {
	model := &fakeModel{}
	client := newQueryTestClient(t, model, memory.NewGraphMemoryStore(), NewQueryClientParams{
		ContextTokenBudget: 2,
	})

	structured := StructuredContext{
		Documents: []string{"a document that is far over any two token budget"},
	}

	fitted, err := client.fitContextToBudget(structured)
	if err != nil {
		t.Fatalf("fitContextToBudget() error = %v", err)
	}
	if len(fitted.Documents) != 1 {
		t.Errorf("kept %d documents, expected the floor of 1", len(fitted.Documents))
	}
}

func TestFitContextToBudgetNoTrimWhenFitting(t *testing.T) {
	model := &fakeModel{}
	client := newQueryTestClient(t, model, memory.NewGraphMemoryStore(), NewQueryClientParams{})

	structured := StructuredContext{
		Concepts:  []string{"Inflation"},
		Documents: []string{"short one", "short two"},
	}

	fitted, err := client.fitContextToBudget(structured)
	if err != nil {
		t.Fatalf("fitContextToBudget() error = %v", err)
	}
	if len(fitted.Documents) != 2 {
		t.Errorf("kept %d documents, expected 2", len(fitted.Documents))
	}
}

func TestSynthesizeAnswerUsesTrimmedContext(t *testing.T) {
	model := &fakeModel{
		respond: scriptedResponses("the answer"),
	}
	client := newQueryTestClient(t, model, memory.NewGraphMemoryStore(), NewQueryClientParams{
		ContextTokenBudget: 40,
	})

	structured := StructuredContext{
		Documents: []string{
			"first " + strings.Repeat("alpha ", 20),
			"second " + strings.Repeat("bravo ", 20),
		},
	}

	answer, err := client.SynthesizeAnswer(context.Background(), "what is it?", structured)
	if err != nil {
		t.Fatalf("SynthesizeAnswer() error = %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}

	if len(model.prompts) != 1 {
		t.Fatalf("completion calls = %d, expected 1", len(model.prompts))
	}
	prompt := model.prompts[0]
	if !strings.Contains(prompt, "first") {
		t.Errorf("prompt lost the top-ranked document")
	}
	if strings.Contains(prompt, "second") {
		t.Errorf("prompt still contains the trimmed document")
	}
}
