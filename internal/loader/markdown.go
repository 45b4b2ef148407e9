package loader

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
)

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// loadMarkdown renders Markdown to HTML and strips the tags, keeping the
// readable text. Rendering first means lists, links and emphasis collapse
// to their text content instead of leaking syntax into the chunks.
func loadMarkdown(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	var html bytes.Buffer
	if err := goldmark.Convert(src, &html); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&html)
	if err != nil {
		return "", fmt.Errorf("parse rendered markdown: %w", err)
	}

	var b strings.Builder
	doc.Find("body").Children().Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	})

	text := b.String()
	if text == "" {
		// No body wrapper (goldmark emits fragments); fall back to full text.
		text = doc.Text()
	}
	return strings.TrimSpace(blankLinesRe.ReplaceAllString(text, "\n\n")), nil
}
