// Package server exposes the letter and video tools as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"assist/internal/logger"
	"assist/internal/service"
)

// VideoPort is the subset of the video service used by the handlers.
type VideoPort interface {
	Summarize(ctx context.Context, videoURL string) (*service.Result, error)
	Quiz(ctx context.Context, videoURL string, n int) (*service.Result, error)
}

// LetterPort is the subset of the letter service used by the handlers.
type LetterPort interface {
	Generate(ctx context.Context, req service.LetterRequest) (*service.LetterResult, error)
}

type Config struct {
	Addr           string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

type Server struct {
	cfg    Config
	engine *gin.Engine
}

func New(cfg Config, video VideoPort, letter LetterPort) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadBytes
	engine.Use(gin.Recovery(), RequestID(), AccessLog(), gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/letter/pdf"})))
	if cfg.RequestTimeout > 0 {
		engine.Use(Timeout(cfg.RequestTimeout))
	}

	h := &handler{video: video, letter: letter, maxUpload: cfg.MaxUploadBytes}
	registerRoutes(engine, h)
	return &Server{cfg: cfg, engine: engine}
}

// registerRoutes binds every endpoint to r.
func registerRoutes(r gin.IRouter, h *handler) {
	r.GET("/healthz", h.Health)
	api := r.Group("/api")
	api.POST("/letter", h.Letter)
	api.POST("/letter/pdf", h.LetterPDF)
	api.POST("/video/summary", h.Summary)
	api.POST("/video/quiz", h.Quiz)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("http server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
