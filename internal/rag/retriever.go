package rag

import (
	"context"
	"log/slog"
)

// ScoredChunk is a retrieved chunk ready for prompt assembly.
type ScoredChunk struct {
	Text    string
	Source  string
	Section string
	Score   float32 // cosine similarity in [-1, 1]
	Rank    int     // 1-based
}

// Retriever answers queries against a built store.
type Retriever struct {
	store         *Store
	topK          int
	minSimilarity float32
}

func NewRetriever(store *Store, topK int, minSimilarity float32) *Retriever {
	return &Retriever{
		store:         store,
		topK:          topK,
		minSimilarity: minSimilarity,
	}
}

// Retrieve returns the top-K chunks most similar to the query. An empty or
// missing index yields no results rather than an error, so the chatbot can
// degrade to answering without context.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]ScoredChunk, error) {
	if r.store == nil || r.store.Count() == 0 {
		slog.Debug("no vectors in store, skipping retrieval")
		return nil, nil
	}

	results, err := r.store.Query(ctx, query, r.topK, r.minSimilarity)
	if err != nil {
		return nil, err
	}

	chunks := make([]ScoredChunk, 0, len(results))
	for i, res := range results {
		chunks = append(chunks, ScoredChunk{
			Text:    res.Content,
			Source:  res.Metadata["source"],
			Section: res.Metadata["section"],
			Score:   res.Similarity,
			Rank:    i + 1,
		})
	}

	slog.Debug("retrieved chunks", "query", query, "count", len(chunks))
	return chunks, nil
}
