package chunker

import (
	"unicode/utf8"

	"assist/internal/domain"
)

const (
	DefaultSize    = 1000
	DefaultOverlap = 150
)

// DefaultSeparators is the split priority: paragraph, line, word, character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveChunker splits text on the coarsest separator that keeps pieces within
// the size limit, then merges the pieces into overlapping windows.
// Sizes are measured in characters (runes).
type RecursiveChunker struct {
	size       int
	overlap    int
	separators []string
}

func NewRecursiveChunker(size, overlap int) *RecursiveChunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &RecursiveChunker{size: size, overlap: overlap, separators: DefaultSeparators}
}

// WithSeparators replaces the separator priority list. The character level is
// always appended so that every piece can be brought under the size limit.
func (c *RecursiveChunker) WithSeparators(separators ...string) *RecursiveChunker {
	seps := make([]string, 0, len(separators)+1)
	for _, s := range separators {
		if s != "" {
			seps = append(seps, s)
		}
	}
	c.separators = append(seps, "")
	return c
}

func (c *RecursiveChunker) Size() int    { return c.size }
func (c *RecursiveChunker) Overlap() int { return c.overlap }

func (c *RecursiveChunker) Chunk(text string) []domain.Chunk {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	pieces := c.split(runes, 0, len(runes), 0)
	return c.merge(runes, pieces)
}

type span struct{ start, end int }

func (s span) len() int { return s.end - s.start }

func (c *RecursiveChunker) split(runes []rune, start, end, level int) []span {
	if end-start <= c.size {
		return []span{{start, end}}
	}
	if level >= len(c.separators) || c.separators[level] == "" {
		out := make([]span, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, span{i, i + 1})
		}
		return out
	}
	sep := []rune(c.separators[level])
	var out []span
	pieceStart := start
	for i := start; i+len(sep) <= end; {
		if !hasPrefixAt(runes, i, sep) {
			i++
			continue
		}
		// the separator stays with the piece it terminates
		cut := i + len(sep)
		out = c.appendPiece(out, runes, pieceStart, cut, level)
		pieceStart, i = cut, cut
	}
	if pieceStart < end {
		out = c.appendPiece(out, runes, pieceStart, end, level)
	}
	return out
}

func (c *RecursiveChunker) appendPiece(out []span, runes []rune, start, end, level int) []span {
	if end-start <= c.size {
		return append(out, span{start, end})
	}
	return append(out, c.split(runes, start, end, level+1)...)
}

func (c *RecursiveChunker) merge(runes []rune, pieces []span) []domain.Chunk {
	var (
		chunks []domain.Chunk
		window []span
		total  int
	)
	emit := func() {
		start, end := window[0].start, window[len(window)-1].end
		chunks = append(chunks, domain.Chunk{Index: len(chunks), Text: string(runes[start:end]), Start: start})
	}
	for _, p := range pieces {
		if len(window) > 0 && total+p.len() > c.size {
			emit()
			// keep the longest tail that fits the overlap and still leaves room for p
			for total > c.overlap || (total > 0 && total+p.len() > c.size) {
				total -= window[0].len()
				window = window[1:]
			}
		}
		window = append(window, p)
		total += p.len()
	}
	if len(window) > 0 {
		emit()
	}
	return chunks
}

func hasPrefixAt(runes []rune, i int, sep []rune) bool {
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

// Reconstruct joins chunks back into the source text, dropping the part of
// each chunk that overlaps its predecessor.
func Reconstruct(chunks []domain.Chunk) string {
	var out []rune
	prevEnd := 0
	for i, ch := range chunks {
		r := []rune(ch.Text)
		skip := 0
		if i > 0 {
			skip = prevEnd - ch.Start
		}
		if skip < 0 {
			skip = 0
		}
		if skip < len(r) {
			out = append(out, r[skip:]...)
		}
		prevEnd = ch.Start + len(r)
	}
	return string(out)
}

// OverlapWith returns how many characters chunk b shares with the end of chunk a.
func OverlapWith(a, b domain.Chunk) int {
	n := a.Start + utf8.RuneCountInString(a.Text) - b.Start
	if n < 0 {
		return 0
	}
	return n
}
