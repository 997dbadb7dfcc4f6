package domain

import (
	"context"
	"time"
)

// TranscriptSegment is one timed caption line of a video transcript.
type TranscriptSegment struct {
	Text     string
	Start    time.Duration
	Duration time.Duration
}

// Chunk is a bounded slice of a larger text used for embedding and retrieval.
// Start is the rune offset of the chunk inside the source text.
type Chunk struct {
	Index int
	Text  string
	Start int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// ResumeData is the structured form of a résumé.
type ResumeData struct {
	Skills       []string `json:"skills"`
	Experience   []string `json:"experience"`
	Achievements []string `json:"achievements"`
	Education    []string `json:"education"`
	Projects     []string `json:"projects"`
}

// Normalize replaces nil categories with empty slices.
func (r *ResumeData) Normalize() {
	for _, field := range []*[]string{&r.Skills, &r.Experience, &r.Achievements, &r.Education, &r.Projects} {
		if *field == nil {
			*field = []string{}
		}
	}
}

// EmptyResume returns a résumé with every category present and empty.
func EmptyResume() ResumeData {
	var r ResumeData
	r.Normalize()
	return r
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Question string   `json:"question" validate:"required"`
	Choices  []string `json:"choices" validate:"len=4,dive,required"`
	Answer   string   `json:"answer" validate:"oneof=A B C D"`
}

// Quiz is an ordered list of questions. An empty quiz means generation failed.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// ScoreResult is the outcome of keyword matching between a job description and a candidate.
type ScoreResult struct {
	Score    int      `json:"score"`
	Matched  []string `json:"matched"`
	Missing  []string `json:"missing"`
	Keywords []string `json:"keywords"`
}

// Task names a user action. Summarize and Quiz select what the retrieval
// pipeline produces.
type Task string

const (
	TaskSummarize Task = "summarize"
	TaskQuiz      Task = "quiz"
	TaskLetter    Task = "letter"
)

// Chunker splits text into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(text string) []Chunk
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// QueryEmbedder is implemented by embedders that embed search queries
// differently from the documents they are matched against.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// Generator sends a prompt to a language model and returns its text output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TranscriptSource fetches the timed transcript of a video.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) ([]TranscriptSegment, error)
}
