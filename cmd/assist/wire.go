package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"google.golang.org/genai"

	"assist/internal/chunker"
	"assist/internal/config"
	"assist/internal/domain"
	"assist/internal/embedding/gemini"
	"assist/internal/embedding/openai"
	"assist/internal/embedding/tfidf"
	"assist/internal/llm"
	"assist/internal/service"
	"assist/internal/transcript"
	"assist/internal/vectorstore/memory"
	"assist/internal/vectorstore/qdrant"
)

// app holds the services assembled from the config.
type app struct {
	video  *service.VideoService
	letter *service.LetterService
}

func buildApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	gen, genaiClient, err := buildGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	newEmbedder, err := embedderFactory(ctx, cfg.Embedder, genaiClient)
	if err != nil {
		return nil, err
	}
	newStore, err := storeFactory(cfg.VectorStore)
	if err != nil {
		return nil, err
	}

	source := transcript.NewYouTubeSource(transcript.Config{
		WatchURL:  cfg.Transcript.WatchURL,
		Languages: cfg.Transcript.Languages,
		Timeout:   time.Duration(cfg.Transcript.TimeoutSecs) * time.Second,
	})
	video := service.NewVideoService(
		source,
		chunker.NewRecursiveChunker(cfg.Chunker.Size, cfg.Chunker.Overlap),
		newEmbedder,
		newStore,
		gen,
		service.VideoConfig{
			TopK:         cfg.Retrieval.TopK,
			SummaryQuery: cfg.Retrieval.SummaryQuery,
			QuizQuery:    cfg.Retrieval.QuizQuery,
		},
	)
	return &app{video: video, letter: service.NewLetterService(gen)}, nil
}

// buildGenerator returns the configured model client. The genai client is
// returned as well so a Gemini embedder can share it.
func buildGenerator(ctx context.Context, cfg config.LLMConfig) (domain.Generator, *genai.Client, error) {
	switch cfg.Provider {
	case "openai":
		o := cfg.OpenAI
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:    o.BaseURL,
			APIKey:     os.Getenv(o.APIKeyEnv),
			Model:      o.Model,
			Timeout:    time.Duration(o.TimeoutSecs) * time.Second,
			MaxRetries: o.MaxRetries,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("llm init failed (set %s): %w", o.APIKeyEnv, err)
		}
		return client, nil, nil
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, os.Getenv(cfg.Gemini.APIKeyEnv), cfg.Gemini.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("llm init failed (set %s): %w", cfg.Gemini.APIKeyEnv, err)
		}
		return client, client.Client(), nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// embedderFactory builds a fresh embedder for every run so that corpus-fitted
// state never leaks between videos.
func embedderFactory(ctx context.Context, cfg config.EmbedderConfig, shared *genai.Client) (service.EmbedderFactory, error) {
	switch cfg.Type {
	case "tfidf":
		return func(context.Context) (domain.Embedder, error) {
			return tfidf.NewEmbedder(), nil
		}, nil
	case "openai":
		o := cfg.OpenAI
		timeout := time.Duration(o.TimeoutSecs) * time.Second
		httpClient := &http.Client{Timeout: timeout}
		return func(context.Context) (domain.Embedder, error) {
			return openai.NewClient(openai.Config{
				BaseURL:    o.BaseURL,
				APIKey:     os.Getenv(o.APIKeyEnv),
				Model:      o.Model,
				Timeout:    timeout,
				MaxRetries: o.MaxRetries,
				HTTPClient: httpClient,
			})
		}, nil
	case "gemini":
		g := cfg.Gemini
		client := shared
		if client == nil {
			apiKey := os.Getenv(g.APIKeyEnv)
			if apiKey == "" {
				return nil, fmt.Errorf("gemini embedder: %s is not set", g.APIKeyEnv)
			}
			var err error
			client, err = genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
			if err != nil {
				return nil, fmt.Errorf("gemini embedder init failed: %w", err)
			}
		}
		return func(context.Context) (domain.Embedder, error) {
			emb, err := gemini.NewEmbedder(client, g.Model, g.TaskType)
			if err != nil {
				return nil, err
			}
			return emb.WithQueryTaskType(g.QueryTaskType), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// storeFactory builds an isolated store for every run.
func storeFactory(cfg config.VectorStoreConfig) (service.StoreFactory, error) {
	switch cfg.Type {
	case "memory":
		return func(context.Context) (domain.VectorStore, error) {
			return memory.NewStorage(), nil
		}, nil
	case "qdrant":
		q := cfg.Qdrant
		if q == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return func(context.Context) (domain.VectorStore, error) {
			return qdrant.NewStorage(qdrant.Config{
				URL:              q.URL,
				APIKey:           os.Getenv(q.APIKeyEnv),
				CollectionPrefix: q.CollectionPrefix,
				Timeout:          time.Duration(q.TimeoutSecs) * time.Second,
			}), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}
