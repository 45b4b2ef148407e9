package rag

import (
	"fmt"
	"strings"

	"github.com/essentialrag/ragbot/internal/loader"
)

// Chunk is one retrievable slice of the corpus.
type Chunk struct {
	Text    string
	Source  string // corpus file the chunk came from
	Section string // originating document, with "(part N)" for split sections
}

type section struct {
	name string
	text string
}

// ChunkContent splits aggregated corpus content into chunks. The corpus is
// first divided into per-document sections on the aggregation markers; any
// section longer than size characters is sliced into fixed-size chunks with
// overlap characters shared between neighbors.
//
// Slicing counts runes, not bytes, so multi-byte text never splits
// mid-character.
func ChunkContent(content, source string, size, overlap int) []Chunk {
	var chunks []Chunk
	for _, sec := range splitSections(content, source) {
		runes := []rune(sec.text)
		if len(runes) <= size {
			chunks = append(chunks, Chunk{Text: sec.text, Source: source, Section: sec.name})
			continue
		}

		step := size - overlap
		part := 1
		for start := 0; start < len(runes); start += step {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, Chunk{
				Text:    string(runes[start:end]),
				Source:  source,
				Section: fmt.Sprintf("%s (part %d)", sec.name, part),
			})
			part++
			if end == len(runes) {
				break
			}
		}
	}
	return chunks
}

// splitSections recovers per-document sections from the aggregated corpus.
// Content without markers becomes a single section named after the source.
func splitSections(content, source string) []section {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	if !strings.Contains(content, loader.DocumentMarker) {
		return []section{{name: source, text: strings.TrimSpace(content)}}
	}

	var sections []section
	for _, piece := range strings.Split(content, loader.DocumentMarker) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		name := source
		text := piece
		if header, rest, ok := strings.Cut(piece, "\n"); ok {
			name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(header), "==="))
			text = strings.TrimSpace(rest)
		} else {
			// Marker line with no body.
			continue
		}
		if text == "" {
			continue
		}
		sections = append(sections, section{name: name, text: text})
	}
	return sections
}

// Sections returns the distinct section names in order of first appearance.
func Sections(chunks []Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	var names []string
	for _, c := range chunks {
		if !seen[c.Section] {
			seen[c.Section] = true
			names = append(names, c.Section)
		}
	}
	return names
}
