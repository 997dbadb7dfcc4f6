// Package retrieval builds a per-run embedding index over chunks and answers
// top-k similarity queries against it.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"assist/internal/domain"
)

// Index is an embedded chunk corpus backed by a vector store.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore
	size     int
}

// Build embeds every chunk and loads the vectors into store. Any embedding
// failure aborts the build and clears the store.
func Build(ctx context.Context, embedder domain.Embedder, store domain.VectorStore, chunks []domain.Chunk) (*Index, error) {
	if embedder == nil || store == nil {
		return nil, errors.New("retrieval: embedder and store are required")
	}
	idx := &Index{embedder: embedder, store: store, size: len(chunks)}
	if len(chunks) == 0 {
		return idx, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if err := embedder.Prepare(ctx, texts); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", embedder.Name(), err)
	}

	vectors := make([][]float64, len(chunks))
	for i, text := range texts {
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", chunks[i].Index, err)
		}
		vectors[i] = vec
	}

	if err := store.Init(ctx, len(vectors[0])); err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	if err := store.Upsert(ctx, chunks, vectors); err != nil {
		_ = store.Clear(ctx)
		return nil, fmt.Errorf("upsert vectors: %w", err)
	}
	return idx, nil
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int { return i.size }

// Query returns the k chunks most similar to text, best first, ties broken by
// chunk index. k is clamped to [0, Len()].
func (i *Index) Query(ctx context.Context, text string, k int) ([]domain.SearchResult, error) {
	if k > i.size {
		k = i.size
	}
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}
	embed := i.embedder.Embed
	if qe, ok := i.embedder.(domain.QueryEmbedder); ok {
		embed = qe.EmbedQuery
	}
	vec, err := embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	res, err := i.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(res) > k {
		res = res[:k]
	}
	return res, nil
}

// Close releases the store.
func (i *Index) Close(ctx context.Context) error {
	if i.size == 0 {
		return nil
	}
	return i.store.Clear(ctx)
}
