package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Document is a loaded piece of client content, reduced to plain text.
type Document struct {
	Content string
	Name    string // filename or page title
	Format  string // txt, md, pdf, docx, html, web
	Path    string // file path or URL
}

var supportedExts = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".pdf":      true,
	".docx":     true,
	".html":     true,
	".htm":      true,
}

// LoadFile loads a single document, dispatching on file extension.
func LoadFile(path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var content string
	var err error
	switch ext {
	case ".txt":
		content, err = loadText(path)
	case ".md", ".markdown":
		content, err = loadMarkdown(path)
	case ".pdf":
		content, err = loadPDF(path)
	case ".docx":
		content, err = loadDOCX(path)
	case ".html", ".htm":
		content, err = loadHTMLFile(path)
	default:
		return Document{}, fmt.Errorf("unsupported file format %q (supported: txt, md, pdf, docx, html)", ext)
	}
	if err != nil {
		return Document{}, err
	}

	return Document{
		Content: content,
		Name:    filepath.Base(path),
		Format:  strings.TrimPrefix(ext, "."),
		Path:    path,
	}, nil
}

// LoadDirectory recursively loads all supported documents under dir.
// Individual failures are logged and skipped so one bad file does not
// abort the whole batch.
func LoadDirectory(dir string) ([]Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var docs []Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !supportedExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		doc, err := LoadFile(path)
		if err != nil {
			slog.Warn("failed to load document", "path", path, "error", err)
			return nil
		}
		slog.Info("loaded document", "name", doc.Name, "format", doc.Format, "chars", len(doc.Content))
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return docs, nil
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}
