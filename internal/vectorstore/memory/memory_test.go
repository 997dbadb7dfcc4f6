package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assist/internal/domain"
)

func chunks(n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{Index: i, Text: string(rune('a' + i))}
	}
	return out
}

func TestSearch_RanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, chunks(3), [][]float64{{1, 0}, {0, 1}, {3, 3}}))

	res, err := s.Search(ctx, []float64{0, 2}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, 1, res[0].Chunk.Index)
	assert.Equal(t, 2, res[1].Chunk.Index)
	assert.Equal(t, 0, res[2].Chunk.Index)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
}

func TestSearch_TiesKeepIndexOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, chunks(4), [][]float64{{1, 0}, {2, 0}, {0, 1}, {5, 0}}))

	res, err := s.Search(ctx, []float64{1, 0}, 4)
	require.NoError(t, err)
	got := []int{res[0].Chunk.Index, res[1].Chunk.Index, res[2].Chunk.Index, res[3].Chunk.Index}
	assert.Equal(t, []int{0, 1, 3, 2}, got)
}

func TestSearch_ClampsK(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 1))
	require.NoError(t, s.Upsert(ctx, chunks(2), [][]float64{{1}, {2}}))

	res, err := s.Search(ctx, []float64{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = s.Search(ctx, []float64{1}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestUpsert_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	assert.Error(t, s.Init(ctx, 0))
	require.NoError(t, s.Init(ctx, 2))
	assert.Error(t, s.Upsert(ctx, chunks(2), [][]float64{{1, 1}}))
	assert.Error(t, s.Upsert(ctx, chunks(1), [][]float64{{1}}))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 1))
	require.NoError(t, s.Upsert(ctx, chunks(1), [][]float64{{1}}))
	require.NoError(t, s.Clear(ctx))
	res, err := s.Search(ctx, []float64{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}
