package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentMarker prefixes each document section in the aggregated corpus.
// The chunker splits on it to recover per-document sections.
const DocumentMarker = "=== DOCUMENT:"

// Aggregate combines loaded documents into a single corpus with section
// markers, the format the chunker expects.
func Aggregate(docs []Document) string {
	var sections []string
	for _, doc := range docs {
		content := strings.TrimSpace(doc.Content)
		if content == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("%s %s ===\n\n%s", DocumentMarker, doc.Name, content))
	}
	return strings.Join(sections, "\n\n")
}

// SaveAggregate writes the combined corpus to path, creating parent
// directories as needed.
func SaveAggregate(docs []Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Aggregate(docs)), 0644); err != nil {
		return fmt.Errorf("write aggregate: %w", err)
	}
	return nil
}
