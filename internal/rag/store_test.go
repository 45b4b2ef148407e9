package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"
)

// fakeEmbedding maps texts onto fixed unit vectors so similarity ranking
// is predictable without a real embedding model.
func fakeEmbedding(ctx context.Context, text string) ([]float32, error) {
	switch {
	case strings.Contains(text, "alpha"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "beta"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), fakeEmbedding)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func addTestDocs(t *testing.T, store *Store) {
	t.Helper()
	docs := []chromem.Document{
		{ID: "chunk_00000", Content: "alpha tours in the mountains", Metadata: map[string]string{"section": "tours"}},
		{ID: "chunk_00001", Content: "beta pricing information", Metadata: map[string]string{"section": "prices"}},
	}
	if err := store.AddDocuments(context.Background(), docs, 1); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
}

func TestStore_AddAndQuery(t *testing.T) {
	store := newTestStore(t)
	addTestDocs(t, store)

	if store.Count() != 2 {
		t.Fatalf("expected 2 vectors, got %d", store.Count())
	}

	results, err := store.Query(context.Background(), "alpha question", 1, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !strings.Contains(results[0].Content, "alpha") {
		t.Fatalf("expected the alpha chunk, got %q", results[0].Content)
	}
	if results[0].Metadata["section"] != "tours" {
		t.Fatalf("expected metadata to round-trip, got %v", results[0].Metadata)
	}
}

func TestStore_QueryClampsTopK(t *testing.T) {
	store := newTestStore(t)
	addTestDocs(t, store)

	results, err := store.Query(context.Background(), "alpha", 10, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected topK clamped to collection size (2), got %d", len(results))
	}
}

func TestStore_QueryMinSimilarityFilters(t *testing.T) {
	store := newTestStore(t)
	addTestDocs(t, store)

	// alpha query vs beta chunk has similarity 0; a floor of 0.5 keeps
	// only the alpha chunk.
	results, err := store.Query(context.Background(), "alpha", 2, 0.5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result above the floor, got %d", len(results))
	}
}

func TestStore_EmptyQueryReturnsNothing(t *testing.T) {
	store := newTestStore(t)

	results, err := store.Query(context.Background(), "anything", 3, 0)
	if err != nil {
		t.Fatalf("Query on empty store: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results from empty store, got %v", results)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, fakeEmbedding)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	addTestDocs(t, store)

	reopened, err := NewStore(dir, fakeEmbedding)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if reopened.Count() != 2 {
		t.Fatalf("expected 2 vectors after reopen, got %d", reopened.Count())
	}
}

func TestStore_ResetDropsVectors(t *testing.T) {
	store := newTestStore(t)
	addTestDocs(t, store)

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if store.Count() != 0 {
		t.Fatalf("expected empty store after reset, got %d", store.Count())
	}
}
