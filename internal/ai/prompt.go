package ai

import (
	"fmt"
	"strings"

	"github.com/essentialrag/ragbot/internal/rag"
)

// FormatContext renders retrieved chunks into the context block the LLM
// sees, and returns the deduplicated list of section names for citation.
func FormatContext(chunks []rag.ScoredChunk) (string, []string) {
	if len(chunks) == 0 {
		return "No relevant content found.", nil
	}

	var parts []string
	var sources []string
	seen := make(map[string]bool)

	for _, c := range chunks {
		if !seen[c.Section] {
			seen[c.Section] = true
			sources = append(sources, c.Section)
		}
		parts = append(parts, fmt.Sprintf("[Section: %s]\n%s\n", c.Section, c.Text))
	}

	return strings.Join(parts, "\n---\n"), sources
}

// BuildUserMessage wraps the retrieved context and the question into the
// user turn sent to the LLM.
func BuildUserMessage(context, query string) string {
	return fmt.Sprintf(`Context from knowledge base:
%s

User question: %s

Provide a complete answer based on the provided context.`, context, query)
}

// BuildSystemPrompt assembles the white-label system prompt around the
// company profile text.
func BuildSystemPrompt(profileText string) string {
	var b strings.Builder

	b.WriteString("You are the official virtual assistant of the company described below.\n")
	b.WriteString("You provide promotional support and customer assistance on its behalf.\n\n")

	if profileText != "" {
		b.WriteString("## Company profile\n")
		b.WriteString(profileText)
		b.WriteString("\n")
	}

	b.WriteString("## Answering rules\n")
	b.WriteString("1. Answer ONLY from the context provided with each question\n")
	b.WriteString("2. If the information is not in the context, say so clearly\n")
	b.WriteString("3. Keep an enthusiastic but genuine, professional tone\n")
	b.WriteString("4. Answer in the language the customer writes in\n")
	b.WriteString("5. Be concise but complete\n")

	return b.String()
}
