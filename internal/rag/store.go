package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philippgille/chromem-go"
)

const collectionName = "chunks"

// Store wraps the persistent vector index. Nearest-neighbor search is an
// exact scan delegated to chromem-go; scores are cosine similarities.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewStore opens (or creates) the vector store under vectorsDir.
func NewStore(vectorsDir string, embedFunc chromem.EmbeddingFunc) (*Store, error) {
	db, err := chromem.NewPersistentDB(vectorsDir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("get/create collection: %w", err)
	}

	slog.Info("vector store loaded", "dir", vectorsDir, "count", col.Count())
	return &Store{db: db, collection: col, embedFunc: embedFunc}, nil
}

// Result is a raw nearest-neighbor match.
type Result struct {
	Content    string
	Similarity float32
	Metadata   map[string]string
}

// Query embeds text with the store's embedding func and returns up to topK
// matches at or above minSimilarity, best first.
func (s *Store) Query(ctx context.Context, text string, topK int, minSimilarity float32) ([]Result, error) {
	if s.collection.Count() == 0 {
		return nil, nil
	}

	k := topK
	if k > s.collection.Count() {
		k = s.collection.Count()
	}

	docs, err := s.collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	var results []Result
	for _, d := range docs {
		if d.Similarity < minSimilarity {
			continue
		}
		results = append(results, Result{
			Content:    d.Content,
			Similarity: d.Similarity,
			Metadata:   d.Metadata,
		})
	}
	return results, nil
}

// AddDocuments embeds and persists a batch of documents.
func (s *Store) AddDocuments(ctx context.Context, docs []chromem.Document, concurrency int) error {
	return s.collection.AddDocuments(ctx, docs, concurrency)
}

// Count returns the number of indexed vectors.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Reset drops all indexed vectors so a rebuild starts from scratch.
func (s *Store) Reset() error {
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(collectionName, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.collection = col
	return nil
}
