package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"assist/internal/domain"
	"assist/internal/logger"
	"assist/internal/prompts"
	"assist/internal/retrieval"
	"assist/internal/structured"
	"assist/internal/transcript"
)

const (
	DefaultTopK         = 5
	DefaultQuestions    = 5
	MinQuestions        = 3
	MaxQuestions        = 15
	DefaultSummaryQuery = "summary of full video"
	DefaultQuizQuery    = "quiz from full content"
)

// ErrQuestionCount is returned when a quiz size is outside [MinQuestions, MaxQuestions].
var ErrQuestionCount = fmt.Errorf("number of quiz questions must be between %d and %d", MinQuestions, MaxQuestions)

// EmbedderFactory returns a fresh embedder for one pipeline run.
type EmbedderFactory func(ctx context.Context) (domain.Embedder, error)

// StoreFactory returns a fresh vector store for one pipeline run.
type StoreFactory func(ctx context.Context) (domain.VectorStore, error)

// VideoConfig tunes retrieval. Zero values take the defaults above.
type VideoConfig struct {
	TopK         int
	SummaryQuery string
	QuizQuery    string
}

// VideoService runs the transcript summarizer and quiz generator.
type VideoService struct {
	source      domain.TranscriptSource
	chunker     domain.Chunker
	newEmbedder EmbedderFactory
	newStore    StoreFactory
	generator   domain.Generator
	cfg         VideoConfig
}

func NewVideoService(source domain.TranscriptSource, chunker domain.Chunker, newEmbedder EmbedderFactory, newStore StoreFactory, generator domain.Generator, cfg VideoConfig) *VideoService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.SummaryQuery == "" {
		cfg.SummaryQuery = DefaultSummaryQuery
	}
	if cfg.QuizQuery == "" {
		cfg.QuizQuery = DefaultQuizQuery
	}
	return &VideoService{
		source:      source,
		chunker:     chunker,
		newEmbedder: newEmbedder,
		newStore:    newStore,
		generator:   generator,
		cfg:         cfg,
	}
}

// RunParams carries task specific inputs.
type RunParams struct {
	NumQuestions int
}

// Result is the outcome of one pipeline run.
type Result struct {
	Task      domain.Task
	VideoID   string
	Summary   string
	Quiz      domain.Quiz
	Chunks    int
	Retrieved []domain.SearchResult
	Elapsed   time.Duration
}

// Summarize fetches the transcript of videoURL and summarizes it.
func (s *VideoService) Summarize(ctx context.Context, videoURL string) (*Result, error) {
	id, text, err := s.Transcript(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	res, err := s.Run(ctx, text, domain.TaskSummarize, RunParams{})
	if err != nil {
		return nil, err
	}
	res.VideoID = id
	return res, nil
}

// Quiz fetches the transcript of videoURL and builds an n question quiz.
// n == 0 selects DefaultQuestions.
func (s *VideoService) Quiz(ctx context.Context, videoURL string, n int) (*Result, error) {
	if n == 0 {
		n = DefaultQuestions
	}
	if n < MinQuestions || n > MaxQuestions {
		return nil, ErrQuestionCount
	}
	id, text, err := s.Transcript(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	res, err := s.Run(ctx, text, domain.TaskQuiz, RunParams{NumQuestions: n})
	if err != nil {
		return nil, err
	}
	res.VideoID = id
	return res, nil
}

// Transcript resolves videoURL and returns its id and joined transcript text.
func (s *VideoService) Transcript(ctx context.Context, videoURL string) (string, string, error) {
	id, err := transcript.ExtractVideoID(videoURL)
	if err != nil {
		return "", "", err
	}
	segments, err := s.source.Fetch(ctx, id)
	if err != nil {
		return id, "", err
	}
	return id, transcript.JoinText(segments), nil
}

// Run chunks sourceText, indexes it with a fresh embedder and store, retrieves
// the top-k chunks for the task query and generates the task output.
func (s *VideoService) Run(ctx context.Context, sourceText string, task domain.Task, params RunParams) (*Result, error) {
	start := time.Now()
	var query string
	switch task {
	case domain.TaskSummarize:
		query = s.cfg.SummaryQuery
	case domain.TaskQuiz:
		query = s.cfg.QuizQuery
		if params.NumQuestions == 0 {
			params.NumQuestions = DefaultQuestions
		}
	default:
		return nil, fmt.Errorf("unknown task %q", task)
	}

	if strings.TrimSpace(sourceText) == "" {
		return nil, transcript.ErrNoTranscript
	}
	chunks := s.chunker.Chunk(sourceText)

	retrieved, err := s.retrieve(ctx, chunks, query)
	if err != nil {
		return nil, err
	}
	content := joinInSourceOrder(retrieved)

	res := &Result{Task: task, Chunks: len(chunks), Retrieved: retrieved}
	switch task {
	case domain.TaskSummarize:
		prompt := prompts.Format(prompts.MustGet("video.json", "summarize"), map[string]string{"Content": content})
		res.Summary, err = s.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate summary: %w", err)
		}
	case domain.TaskQuiz:
		prompt := prompts.Format(prompts.MustGet("video.json", "quiz"), map[string]string{
			"Content":      content,
			"NumQuestions": strconv.Itoa(params.NumQuestions),
		})
		raw, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate quiz: %w", err)
		}
		res.Quiz = parseQuiz(ctx, raw, params.NumQuestions)
	}
	res.Elapsed = time.Since(start)

	logger.Ctx(ctx).Info().
		Str("task", string(task)).
		Int("chunks", res.Chunks).
		Int("retrieved", len(retrieved)).
		Int("questions", len(res.Quiz.Questions)).
		Dur("elapsed", res.Elapsed).
		Msg("pipeline run finished")
	return res, nil
}

func (s *VideoService) retrieve(ctx context.Context, chunks []domain.Chunk, query string) ([]domain.SearchResult, error) {
	emb, err := s.newEmbedder(ctx)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	store, err := s.newStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}

	idx, err := retrieval.Build(ctx, emb, store, chunks)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	defer func() {
		if cerr := idx.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Ctx(ctx).Warn().Err(cerr).Msg("failed to release index")
		}
	}()

	res, err := idx.Query(ctx, query, s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Ctx(ctx).Debug().Str("embedder", emb.Name()).Str("query", query).Int("k", s.cfg.TopK).Msg("retrieved chunks")
	return res, nil
}

// joinInSourceOrder concatenates retrieved chunks in transcript order.
func joinInSourceOrder(results []domain.SearchResult) string {
	ordered := make([]domain.SearchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Chunk.Index < ordered[j].Chunk.Index })
	texts := make([]string, len(ordered))
	for i, r := range ordered {
		texts[i] = r.Chunk.Text
	}
	return strings.Join(texts, "\n\n")
}

// parseQuiz fails closed: malformed output gives an empty quiz.
func parseQuiz(ctx context.Context, raw string, n int) domain.Quiz {
	quiz, err := structured.Parse(raw, structured.QuizSchema, domain.Quiz{})
	if err != nil {
		var perr *structured.ParseError
		stage := ""
		if errors.As(err, &perr) {
			stage = perr.Stage
		}
		logger.Ctx(ctx).Warn().Err(err).Str("stage", stage).Msg("quiz output rejected")
		return domain.Quiz{Questions: []domain.QuizQuestion{}}
	}
	if quiz.Questions == nil {
		quiz.Questions = []domain.QuizQuestion{}
	}
	if n > 0 && len(quiz.Questions) > n {
		quiz.Questions = quiz.Questions[:n]
	}
	return quiz
}
