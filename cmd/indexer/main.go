package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/essentialrag/ragbot/internal/ai"
	"github.com/essentialrag/ragbot/internal/config"
	"github.com/essentialrag/ragbot/internal/loader"
	"github.com/essentialrag/ragbot/internal/rag"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	source := flag.String("source", "", "content file or document directory (overrides config)")
	scrape := flag.Bool("scrape", false, "also scrape configured URLs even if disabled in config")
	out := flag.String("out", "", "path for the aggregated corpus file (overrides config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	corpusFile := cfg.Data.ContentFile
	if *out != "" {
		corpusFile = *out
	}

	content, docCount, err := loadCorpus(cfg, *source, *scrape, corpusFile)
	if err != nil {
		slog.Error("load corpus failed", "error", err)
		os.Exit(1)
	}
	slog.Info("corpus ready", "documents", docCount, "chars", len(content))

	embedFunc, err := ai.NewEmbeddingFunc(ctx, cfg.Embedding)
	if err != nil {
		slog.Error("create embedding func failed", "error", err)
		os.Exit(1)
	}

	store, err := rag.NewStore(cfg.RAG.VectorsDir, embedFunc)
	if err != nil {
		slog.Error("open vector store failed", "error", err)
		os.Exit(1)
	}

	indexer := rag.NewIndexer(store,
		cfg.RAG.VectorsDir, cfg.RAG.ManifestFile,
		cfg.Chunking.Size, cfg.Chunking.Overlap,
		cfg.Embedding.Provider, cfg.Embedding.Model,
	)

	result, err := indexer.Build(ctx, content, filepath.Base(corpusFile))
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	report := fmt.Sprintf(`Index Build Report
==================
Documents:  %d
Chunks:     %d
Vectors:    %d
Sections:   %d
Embedding:  %s/%s
Manifest:   %s
`, docCount, result.Chunks, result.Vectors, len(result.Sections),
		cfg.Embedding.Provider, cfg.Embedding.Model, result.ManifestPath)

	reportPath := filepath.Join(filepath.Dir(cfg.RAG.ManifestFile), "build_report.txt")
	if err := os.WriteFile(reportPath, []byte(report), 0644); err != nil {
		slog.Warn("write build report failed", "path", reportPath, "error", err)
	}
	fmt.Println(report)
	fmt.Println("Ready for chatbot! Run: chatbot -config", *configPath)
}

// loadCorpus resolves the corpus content. A file source is read as the
// already-aggregated corpus; a directory (plus optional scraped pages) is
// loaded, aggregated with document markers and saved to corpusFile.
func loadCorpus(cfg *config.Config, source string, forceScrape bool, corpusFile string) (string, int, error) {
	path := source
	if path == "" {
		if _, err := os.Stat(cfg.Data.ContentDir); err == nil {
			path = cfg.Data.ContentDir
		} else {
			path = cfg.Data.ContentFile
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("source not found: %s (add documents or set data.content_file)", path)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", 0, fmt.Errorf("read corpus file: %w", err)
		}
		return string(data), 1, nil
	}

	slog.Info("loading documents", "dir", path)
	docs, err := loader.LoadDirectory(path)
	if err != nil {
		return "", 0, err
	}

	if cfg.Scrape.Enabled || forceScrape {
		if len(cfg.Scrape.URLs) == 0 {
			slog.Warn("scraping requested but scrape.urls is empty")
		} else {
			docs = append(docs, loader.ScrapeURLs(cfg.Scrape.URLs, cfg.Scrape.Selector)...)
		}
	}

	if len(docs) == 0 {
		return "", 0, fmt.Errorf("no supported documents found in %s (add .txt, .md, .pdf, .docx or .html files)", path)
	}

	if err := loader.SaveAggregate(docs, corpusFile); err != nil {
		return "", 0, err
	}
	slog.Info("aggregated corpus saved", "path", corpusFile, "documents", len(docs))

	content := loader.Aggregate(docs)
	if strings.TrimSpace(content) == "" {
		return "", 0, fmt.Errorf("documents contained no text")
	}
	return content, len(docs), nil
}
