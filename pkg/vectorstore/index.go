package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/store"
)

// Index is a flat cosine-similarity index over embedded document chunks.
// Vectors are L2-normalized at insert, so inner product equals cosine
// similarity. The chunk list and vector list stay position-aligned:
// vectors[i] always embeds documents[i].
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	documents []store.Document

	embedder embedding.Provider
	splitter *chunker.Splitter
}

// Build chunks the documents, embeds every chunk and constructs the index.
// Any embedding failure aborts the build; callers treat a failed build as
// "index absent" and fall back to keyword search.
func Build(ctx context.Context, documents []store.Document, embedder embedding.Provider, splitter *chunker.Splitter) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedding provider not available")
	}
	if splitter == nil {
		splitter = chunker.NewSplitter(0, 0)
	}

	ix := &Index{embedder: embedder, splitter: splitter}
	if err := ix.insert(ctx, documents); err != nil {
		return nil, err
	}
	return ix, nil
}

// Add appends new documents (chunked and embedded) to the index. On
// dimension mismatch or embedding failure the index is left untouched and
// the error is returned; the registry then rebuilds from the full list.
func (ix *Index) Add(ctx context.Context, documents []store.Document) error {
	return ix.insert(ctx, documents)
}

func (ix *Index) insert(ctx context.Context, documents []store.Document) error {
	chunks := ix.splitter.SplitDocuments(documents)

	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := ix.embedder.Embed(ctx, chunk.Content, embedding.TaskDocument)
		if err != nil {
			return fmt.Errorf("embed chunk: %w", err)
		}
		vectors = append(vectors, vec)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Validate dimensions before mutating so a failed insert never leaves
	// the index partially updated.
	dimension := ix.dimension
	for _, vec := range vectors {
		if dimension == 0 {
			dimension = len(vec)
		}
		if len(vec) != dimension {
			return fmt.Errorf("embedding dimension changed: index has %d, got %d", dimension, len(vec))
		}
	}

	ix.dimension = dimension
	ix.vectors = append(ix.vectors, vectors...)
	ix.documents = append(ix.documents, chunks...)
	return nil
}

// Search returns up to k chunks ordered by descending cosine similarity.
// An empty index yields an empty result, not an error.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]store.SearchResult, error) {
	ix.mu.RLock()
	count := len(ix.vectors)
	ix.mu.RUnlock()
	if count == 0 || k <= 0 {
		return nil, nil
	}

	queryVec, err := ix.embedder.Embed(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, len(ix.vectors))
	for i, vec := range ix.vectors {
		scores[i] = scored{idx: i, score: dot(vec, queryVec)}
	}
	sort.Slice(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]store.SearchResult, 0, k)
	for _, s := range scores[:k] {
		results = append(results, store.SearchResult{
			Document: ix.documents[s.idx],
			Score:    s.score,
			Reason:   "Semantic similarity",
		})
	}
	return results, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.documents)
}

// Dimension returns the vector dimension, 0 before the first insert.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
