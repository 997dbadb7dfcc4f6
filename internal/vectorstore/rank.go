// Package vectorstore holds helpers shared by the vector store backends.
package vectorstore

import (
	"sort"

	"assist/internal/domain"
)

// SortResults orders by score descending, then chunk index ascending.
func SortResults(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
}
