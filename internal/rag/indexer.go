package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/philippgille/chromem-go"
)

const (
	indexBatchSize = 20
	progressFile   = ".progress"
)

// Manifest describes a built index. It is written next to the vectors and
// read back by the chat binary for startup reporting.
type Manifest struct {
	TotalChunks       int       `json:"total_chunks"`
	EmbeddingProvider string    `json:"embedding_provider"`
	EmbeddingModel    string    `json:"embedding_model"`
	ChunkSize         int       `json:"chunk_size"`
	ChunkOverlap      int       `json:"chunk_overlap"`
	Sections          []string  `json:"sections"`
	BuiltAt           time.Time `json:"built_at"`
}

// LoadManifest reads a manifest written by a previous Build.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Indexer turns corpus content into a persisted vector index.
type Indexer struct {
	store        *Store
	vectorsDir   string
	manifestPath string

	chunkSize    int
	chunkOverlap int

	// recorded in the manifest so operators know what built the index
	embedProvider string
	embedModel    string
}

func NewIndexer(store *Store, vectorsDir, manifestPath string, chunkSize, chunkOverlap int, embedProvider, embedModel string) *Indexer {
	return &Indexer{
		store:         store,
		vectorsDir:    vectorsDir,
		manifestPath:  manifestPath,
		chunkSize:     chunkSize,
		chunkOverlap:  chunkOverlap,
		embedProvider: embedProvider,
		embedModel:    embedModel,
	}
}

// BuildResult summarizes a completed Build.
type BuildResult struct {
	Chunks       int
	Vectors      int
	Sections     []string
	ManifestPath string
}

// Build chunks the corpus, embeds every chunk and persists the index, then
// writes the manifest.
//
// Embedding happens in batches; after each batch a progress file records how
// far the build got, so an interrupted run resumes instead of re-embedding
// from zero. A fresh build (no progress file) drops any existing vectors
// first, matching overwrite-on-build semantics.
func (idx *Indexer) Build(ctx context.Context, content, source string) (*BuildResult, error) {
	chunks := ChunkContent(content, source, idx.chunkSize, idx.chunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced from %s (empty corpus?)", source)
	}
	slog.Info("chunked corpus", "source", source, "chunks", len(chunks))

	progressPath := filepath.Join(idx.vectorsDir, progressFile)
	startFrom := 0
	if data, err := os.ReadFile(progressPath); err == nil {
		fmt.Sscanf(string(data), "%d", &startFrom)
		slog.Info("resuming from checkpoint", "start", startFrom)
	} else if idx.store.Count() > 0 {
		slog.Info("rebuilding index", "old_vectors", idx.store.Count())
		if err := idx.store.Reset(); err != nil {
			return nil, err
		}
	}

	var batch []chromem.Document
	flush := func(done int) error {
		if len(batch) == 0 {
			return nil
		}
		if err := idx.store.AddDocuments(ctx, batch, runtime.NumCPU()); err != nil {
			return fmt.Errorf("add documents batch at %d: %w", done, err)
		}
		batch = batch[:0]
		return os.WriteFile(progressPath, []byte(fmt.Sprintf("%d", done)), 0644)
	}

	for i, chunk := range chunks {
		if i < startFrom {
			continue
		}
		batch = append(batch, chromem.Document{
			ID:      fmt.Sprintf("chunk_%05d", i),
			Content: chunk.Text,
			Metadata: map[string]string{
				"source":  chunk.Source,
				"section": chunk.Section,
			},
		})
		if len(batch) >= indexBatchSize {
			slog.Info("embedding", "progress", fmt.Sprintf("%d/%d", i+1, len(chunks)))
			if err := flush(i + 1); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(len(chunks)); err != nil {
		return nil, err
	}
	os.Remove(progressPath)

	sections := Sections(chunks)
	if err := idx.writeManifest(chunks, sections); err != nil {
		return nil, err
	}

	slog.Info("index build complete", "chunks", len(chunks), "vectors", idx.store.Count())
	return &BuildResult{
		Chunks:       len(chunks),
		Vectors:      idx.store.Count(),
		Sections:     sections,
		ManifestPath: idx.manifestPath,
	}, nil
}

func (idx *Indexer) writeManifest(chunks []Chunk, sections []string) error {
	m := Manifest{
		TotalChunks:       len(chunks),
		EmbeddingProvider: idx.embedProvider,
		EmbeddingModel:    idx.embedModel,
		ChunkSize:         idx.chunkSize,
		ChunkOverlap:      idx.chunkOverlap,
		Sections:          sections,
		BuiltAt:           time.Now().UTC(),
	}

	if err := os.MkdirAll(filepath.Dir(idx.manifestPath), 0755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(idx.manifestPath, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
