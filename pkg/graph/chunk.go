package graph

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/studygraph/backend/pkg/common"
)

const (
	defaultMaxChunkChars = 6000

	// Lines longer than this are body text even when capitalized.
	maxHeadingLength = 80

	// How far around a forced cut point the sentence search looks.
	boundaryWindow = 200

	// Once a chunk grows within this margin of the budget, it is
	// flushed at the next sentence end instead of filling up exactly.
	softBufferChars = 500
)

var numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\s+`)

// isHeading reports whether a trimmed line reads like a section
// heading: all caps, a numbered prefix like "14.1 Title", or title
// case without a closing period.
func isHeading(line string) bool {
	if line == "" || len(line) > maxHeadingLength {
		return false
	}
	if isAllUpper(line) {
		return true
	}
	if numberedHeadingRe.MatchString(line) {
		return true
	}
	return isTitleCase(line) && !strings.HasSuffix(line, ".")
}

func isAllUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		hasLetter = true
	}
	return hasLetter
}

// isTitleCase checks the first letter of every word; words that do not
// start with a letter (numbers, bullets) are ignored.
func isTitleCase(line string) bool {
	sawWord := false
	for _, word := range strings.Fields(line) {
		r := []rune(word)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		sawWord = true
	}
	return sawWord
}

func isSentenceTerminator(ch byte) bool {
	return ch == '.' || ch == '!' || ch == '?'
}

// breakAtSentenceBoundary splits text so the head stays close to
// maxLen: it prefers the sentence terminator nearest the cut point
// within the search window, then the nearest preceding space, and hard
// cuts at maxLen as a last resort.
func breakAtSentenceBoundary(text string, maxLen int) (string, string) {
	if len(text) <= maxLen {
		return text, ""
	}

	searchStart := max(maxLen-boundaryWindow, 0)
	searchEnd := min(maxLen+boundaryWindow, len(text)-1)
	for i := searchEnd; i > searchStart; i-- {
		if isSentenceTerminator(text[i]) {
			return strings.TrimSpace(text[:i+1]), strings.TrimSpace(text[i+1:])
		}
	}

	for i := maxLen; i > max(maxLen-100, 0); i-- {
		if text[i] == ' ' {
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i:])
		}
	}

	return strings.TrimSpace(text[:maxLen]), strings.TrimSpace(text[maxLen:])
}

// splitIntoChunks segments document text into heading-scoped chunks of
// at most maxChars characters, plus a small overshoot from the
// boundary search window. Blank lines are dropped. A heading starts a
// fresh chunk and is repeated as prefix whenever its section has to be
// split for length, so every chunk stays self describing.
func splitIntoChunks(text string, maxChars int) []common.Chunk {
	if maxChars <= 0 {
		maxChars = defaultMaxChunkChars
	}

	var chunks []common.Chunk
	var current strings.Builder
	activeHeading := ""
	pending := ""

	flush := func() {
		chunkText := strings.TrimSpace(current.String())
		current.Reset()
		if chunkText == "" {
			return
		}
		chunks = append(chunks, common.Chunk{
			Text:          chunkText,
			SourceHeading: activeHeading,
			SequenceIndex: len(chunks),
		})
	}

	reseed := func() {
		if activeHeading != "" {
			current.WriteString(activeHeading)
			current.WriteString("\n")
		}
	}

	appendLine := func(line string) {
		if pending != "" {
			line = pending + " " + line
			pending = ""
		}

		if current.Len()+len(line)+1 > maxChars && current.Len() > 0 {
			flush()
			reseed()
		}

		if len(line) > maxChars {
			budget := maxChars - current.Len() - 100
			if budget <= 0 {
				budget = maxChars
			}
			head, tail := breakAtSentenceBoundary(line, budget)
			current.WriteString(head)
			flush()
			reseed()
			pending = tail
			return
		}

		current.WriteString(line)
		current.WriteString(" ")
		if current.Len() < maxChars-softBufferChars {
			return
		}

		accumulated := current.String()
		breakPoint := len(accumulated)
		for i := max(len(accumulated)-100, 0); i < len(accumulated); i++ {
			if isSentenceTerminator(accumulated[i]) {
				breakPoint = i + 1
				break
			}
		}
		if breakPoint < len(accumulated) {
			current.Reset()
			current.WriteString(accumulated[:breakPoint])
			flush()
			reseed()
			remainder := strings.TrimSpace(accumulated[breakPoint:])
			if remainder != "" {
				current.WriteString(remainder)
				current.WriteString(" ")
			}
		}
	}

	// Oversized lines leave a tail behind that merges into the next
	// line; at a section end the tail has no next line, so it is fed
	// back through until nothing is left over.
	drainPending := func() {
		for pending != "" {
			line := pending
			pending = ""
			appendLine(line)
		}
	}

	for rawLine := range strings.SplitSeq(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if isHeading(line) {
			drainPending()
			flush()
			activeHeading = line
			current.WriteString(line)
			current.WriteString("\n")
			continue
		}

		appendLine(line)
	}

	drainPending()
	flush()

	return chunks
}
