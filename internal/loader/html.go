package loader

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const scrapeUserAgent = "Mozilla/5.0 (compatible; ragbot/1.0)"

var scrapeClient = &http.Client{Timeout: 30 * time.Second}

// loadHTMLFile extracts readable text from a local HTML file.
func loadHTMLFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}
	return extractText(doc, ""), nil
}

// ScrapeURL fetches a web page and extracts its text content.
// An optional CSS selector narrows extraction to matching elements.
func ScrapeURL(url, selector string) (Document, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := scrapeClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", url, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = url
	}

	return Document{
		Content: extractText(doc, selector),
		Name:    title,
		Format:  "web",
		Path:    url,
	}, nil
}

// ScrapeURLs scrapes each URL in turn. Failures are logged and skipped so
// one dead page does not sink the whole ingestion run.
func ScrapeURLs(urls []string, selector string) []Document {
	var docs []Document
	for _, url := range urls {
		slog.Info("scraping", "url", url)
		doc, err := ScrapeURL(url, selector)
		if err != nil {
			slog.Warn("scrape failed", "url", url, "error", err)
			continue
		}
		if strings.TrimSpace(doc.Content) == "" {
			slog.Warn("scrape returned no text", "url", url)
			continue
		}
		slog.Info("scraped", "title", doc.Name, "chars", len(doc.Content))
		docs = append(docs, doc)
	}
	return docs
}

// extractText pulls readable text from a parsed page, dropping boilerplate
// elements. With a selector, only matching elements contribute.
func extractText(doc *goquery.Document, selector string) string {
	doc.Find("script, style, nav, footer").Remove()

	var raw string
	if selector != "" {
		var parts []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		raw = strings.Join(parts, "\n\n")
	} else {
		raw = doc.Text()
	}

	// Collapse whitespace-only lines.
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
