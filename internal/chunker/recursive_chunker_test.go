package chunker

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Empty(t *testing.T) {
	c := NewRecursiveChunker(1000, 150)
	assert.Empty(t, c.Chunk(""))
}

func TestChunk_ShortTextIsSingleChunk(t *testing.T) {
	c := NewRecursiveChunker(1000, 150)
	chunks := c.Chunk("hello world")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].Start)
}

func TestChunk_TranscriptOf3500Characters(t *testing.T) {
	text := strings.Repeat("abcd ", 700)
	require.Equal(t, 3500, len(text))

	chunks := NewRecursiveChunker(1000, 150).Chunk(text)

	// windows advance by size-overlap = 850: [0,1000) [850,1850) [1700,2700) [2550,3500)
	require.Len(t, chunks, 4)
	starts := []int{0, 850, 1700, 2550}
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, starts[i], ch.Start)
	}
	assert.Equal(t, 950, utf8.RuneCountInString(chunks[3].Text))
	assert.Equal(t, text, Reconstruct(chunks))
}

func TestChunk_PrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("word ", 30) // 150 chars
	text := para + "\n\n" + para + "\n\n" + para
	chunks := NewRecursiveChunker(320, 0).Chunk(text)

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "\n\n"))
	assert.Equal(t, text, Reconstruct(chunks))
}

func TestChunk_CharacterFallbackForLongTokens(t *testing.T) {
	text := strings.Repeat("x", 25)
	chunks := NewRecursiveChunker(10, 3).Chunk(text)

	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Text), 10)
	}
	assert.Equal(t, text, Reconstruct(chunks))
}

func TestChunk_Unicode(t *testing.T) {
	text := strings.Repeat("résumé ünïcödé ", 40)
	chunks := NewRecursiveChunker(50, 10).Chunk(text)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Text))
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Text), 50)
	}
	assert.Equal(t, text, Reconstruct(chunks))
}

func TestChunk_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"a", "go", "retrieval", "the", "transcript\n", "chunk\n\n", "überlong-token-without-spaces-at-all"}

	for trial := 0; trial < 200; trial++ {
		var sb strings.Builder
		n := rng.Intn(400)
		for i := 0; i < n; i++ {
			sb.WriteString(words[rng.Intn(len(words))])
			if rng.Intn(3) > 0 {
				sb.WriteString(" ")
			}
		}
		text := sb.String()
		size := 20 + rng.Intn(200)
		overlap := rng.Intn(size / 2)
		c := NewRecursiveChunker(size, overlap)
		chunks := c.Chunk(text)

		assert.Equal(t, text, Reconstruct(chunks), "trial %d", trial)
		for i, ch := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(ch.Text), size, "trial %d chunk %d", trial, i)
			assert.Equal(t, i, ch.Index)
			if i > 0 {
				assert.LessOrEqual(t, OverlapWith(chunks[i-1], ch), overlap, "trial %d chunk %d", trial, i)
			}
		}
	}
}

func TestNewRecursiveChunker_ClampsParameters(t *testing.T) {
	c := NewRecursiveChunker(0, -5)
	assert.Equal(t, DefaultSize, c.Size())
	assert.Equal(t, 0, c.Overlap())

	c = NewRecursiveChunker(100, 100)
	assert.Equal(t, 99, c.Overlap())
}

func TestWithSeparators_AlwaysEndsWithCharacterLevel(t *testing.T) {
	c := NewRecursiveChunker(5, 0).WithSeparators("|")
	chunks := c.Chunk("aaaaaaaaaaaa|bb")
	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Text), 5)
	}
	assert.Equal(t, "aaaaaaaaaaaa|bb", Reconstruct(chunks))
}
