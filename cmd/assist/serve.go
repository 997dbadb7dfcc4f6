package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"assist/internal/logger"
	"assist/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the cover letter and video endpoints.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, appCfg)
	if err != nil {
		return err
	}
	cfg := server.Config{
		Addr:           appCfg.Server.Addr,
		MaxUploadBytes: appCfg.Server.MaxUploadBytes,
		RequestTimeout: time.Duration(appCfg.Server.RequestTimeout) * time.Second,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if appCfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := server.New(cfg, a.video, a.letter).Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
