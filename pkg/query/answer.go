package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/studygraph/backend/pkg/ai"
	"github.com/studygraph/backend/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

const contextEncoder = "o200k_base"

// buildAnswerContext renders the structured sections into the context
// block of the answer prompt. Empty sections are omitted so the model
// never sees a header with nothing under it.
func buildAnswerContext(structured StructuredContext) string {
	var b strings.Builder
	if len(structured.Concepts) > 0 {
		b.WriteString("Concepts:\n")
		b.WriteString(strings.Join(structured.Concepts, ", "))
		b.WriteString("\n\n")
	}
	if len(structured.Relationships) > 0 {
		b.WriteString("Relationships:\n")
		b.WriteString(strings.Join(structured.Relationships, "\n"))
		b.WriteString("\n\n")
	}
	if len(structured.Documents) > 0 {
		b.WriteString("Documents:\n")
		b.WriteString(strings.Join(structured.Documents, "\n"))
	}
	return b.String()
}

// fitContextToBudget drops trailing documents until the context block
// fits the token budget. Documents arrive in rank order, so the least
// relevant go first; at least one survives when any were retrieved.
// Concepts and relationships are never trimmed.
func (q *QueryClient) fitContextToBudget(structured StructuredContext) (StructuredContext, error) {
	if q.contextTokenBudget <= 0 {
		return structured, nil
	}

	trimmed := 0
	for {
		tokens, err := q.countTokens(buildAnswerContext(structured))
		if err != nil {
			return structured, fmt.Errorf("failed to count context tokens: %w", err)
		}
		if tokens <= q.contextTokenBudget || len(structured.Documents) <= 1 {
			break
		}
		structured.Documents = structured.Documents[:len(structured.Documents)-1]
		trimmed++
	}
	if trimmed > 0 {
		logger.Debug("[Query][SynthesizeAnswer] Trimmed documents to fit context budget",
			"trimmed", trimmed,
			"kept", len(structured.Documents))
	}
	return structured, nil
}

func countPromptTokens(text string) (int, error) {
	enc, err := tiktoken.GetEncoding(contextEncoder)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// SynthesizeAnswer runs one completion over the tutor prompt built
// from the question and the structured context.
func (q *QueryClient) SynthesizeAnswer(ctx context.Context, question string, structured StructuredContext) (string, error) {
	structured, err := q.fitContextToBudget(structured)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(ai.AnswerPrompt, buildAnswerContext(structured), question)

	var opts []ai.GenerateOption
	if q.maxAnswerTokens > 0 {
		opts = append(opts, ai.WithMaxTokens(q.maxAnswerTokens))
	}

	answer, err := q.completions.GenerateCompletion(ctx, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}
	return answer, nil
}
