// internal/rag/prompt.go
package rag

import (
	"fmt"
	"strings"
)

// noContextNotice is placed in the context block when retrieval returned
// nothing, so the generator is told explicitly that there is no grounding
// instead of being handed a malformed prompt.
const noContextNotice = "No relevant context was found in the indexed documents."

const promptInstructions = "Answer concisely using only facts supported by the context above. " +
	"Do not add any information that is not present. " +
	"If the answer is not present in the context, reply exactly: \"I couldn't find the answer in the documents.\" " +
	"Finish with a single line starting with \"Sources:\" listing the document names you used, comma-separated."

// BuildPrompt assembles the grounded prompt from the ranked retrieval result
// and the verbatim question. The context block is bounded by maxTokens
// (word-count estimate): chunks are dropped from the end of the ranked list
// until the bound is satisfied, so the lowest-ranked context goes first. It
// also returns the distinct source document ids that made it into the
// prompt, in ranked order.
func BuildPrompt(question string, chunks []RetrievedChunk, maxTokens int) (string, []string) {
	var b strings.Builder
	b.WriteString("You are a precise assistant. Use ONLY the provided document snippets below and nothing else.\n\n")
	b.WriteString("CONTEXT\n")

	var sources []string
	sourceSet := make(map[string]struct{})
	remaining := maxTokens
	included := 0

	for _, chunk := range chunks {
		text := strings.TrimSpace(chunk.Record.Text)
		if text == "" {
			continue
		}
		tokens := estimateTokens(text)
		if maxTokens > 0 && tokens > remaining {
			if included > 0 {
				break
			}
			// The top-ranked chunk alone exceeds the budget: keep a truncated
			// head rather than sending an empty context block.
			text = truncateToTokens(text, remaining)
			tokens = estimateTokens(text)
			if tokens == 0 {
				break
			}
		}

		doc := chunk.Record.Doc
		b.WriteString(fmt.Sprintf("[doc:%s] %s\n", doc, text))
		included++
		if maxTokens > 0 {
			remaining -= tokens
		}
		if _, ok := sourceSet[doc]; !ok {
			sourceSet[doc] = struct{}{}
			sources = append(sources, doc)
		}
	}

	if included == 0 {
		b.WriteString(noContextNotice + "\n")
	}

	b.WriteString("\nQuestion: " + strings.TrimSpace(question) + "\n\n")
	b.WriteString(promptInstructions + "\n")

	return b.String(), sources
}

// estimateTokens approximates token count by word count, good enough to
// bound prompt size for local models.
func estimateTokens(text string) int {
	return len(strings.Fields(text))
}

func truncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	parts := strings.Fields(text)
	if len(parts) <= maxTokens {
		return text
	}
	return strings.Join(parts[:maxTokens], " ")
}
