package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Embedder produces Gemini embeddings through the genai SDK.
type Embedder struct {
	client    *genai.Client
	model     string
	taskType  string
	queryType string
	dimension int
}

// NewEmbedder wraps an existing genai client. taskType may be empty.
func NewEmbedder(client *genai.Client, model, taskType string) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("gemini embeddings: client is required")
	}
	if model == "" {
		model = "text-embedding-004"
	}
	return &Embedder{client: client, model: model, taskType: taskType}, nil
}

// WithQueryTaskType sets the task type used by EmbedQuery. Without it queries
// use the document task type.
func (e *Embedder) WithQueryTaskType(taskType string) *Embedder {
	e.queryType = taskType
	return e
}

func (e *Embedder) Name() string { return "gemini" }

func (e *Embedder) Prepare(context.Context, []string) error { return nil }

func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.embed(ctx, text, e.taskType)
}

// EmbedQuery embeds a search query with the query task type.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	taskType := e.queryType
	if taskType == "" {
		taskType = e.taskType
	}
	return e.embed(ctx, text, taskType)
}

func (e *Embedder) embed(ctx context.Context, text, taskType string) ([]float64, error) {
	var cfg *genai.EmbedContentConfig
	if taskType != "" {
		cfg = &genai.EmbedContentConfig{TaskType: taskType}
	}
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini embeddings: no embedding values returned")
	}
	values := resp.Embeddings[0].Values
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	if e.dimension == 0 {
		e.dimension = len(out)
	}
	return out, nil
}
