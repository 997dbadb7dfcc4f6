package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_RequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "hello")
	assert.Error(t, err)
}

func TestPrepare_EmptyCorpusIsNoop(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(context.Background(), nil))
	assert.Equal(t, 0, e.Dimension())
}

func TestPrepare_OnlyStopwords(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(context.Background(), []string{"the and of"}))
}

func TestEmbed_NormalizedAndDiscriminative(t *testing.T) {
	ctx := context.Background()
	corpus := []string{
		"photosynthesis converts light into chemical energy in plants",
		"the french revolution began in 1789",
		"neural networks learn weights with gradient descent",
	}
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, corpus))
	assert.Equal(t, "tfidf", e.Name())
	assert.Greater(t, e.Dimension(), 0)

	q, err := e.Embed(ctx, "how do plants use light energy")
	require.NoError(t, err)

	var norm float64
	for _, v := range q {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	best, bestScore := -1, -1.0
	for i, doc := range corpus {
		v, err := e.Embed(ctx, doc)
		require.NoError(t, err)
		var dot float64
		for j := range v {
			dot += v[j] * q[j]
		}
		if dot > bestScore {
			best, bestScore = i, dot
		}
	}
	assert.Equal(t, 0, best)
}

func TestEmbed_UnknownTermsGiveZeroVector(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, []string{"alpha beta"}))
	v, err := e.Embed(ctx, "gamma")
	require.NoError(t, err)
	for _, x := range v {
		assert.Zero(t, x)
	}
}
