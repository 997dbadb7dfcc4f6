// Package main provides the assist command line: a YouTube summarizer and quiz
// generator, a cover letter writer, the terminal UI and the HTTP API.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"assist/internal/config"
	"assist/internal/logger"
)

var (
	configPath string
	logLevel   string

	appCfg    *config.AppConfig
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Cover letters and YouTube study notes from a language model",
	Long: "assist writes cover letters from a résumé and a job description, and summarizes " +
		"or builds quizzes from YouTube transcripts through a retrieval pipeline.",
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (uses ./config.yaml or ~/.config/assist/config.yaml if not provided)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	// The terminal UI owns the screen, so its logs go to a file or nowhere.
	if cmd.Name() == "ui" {
		cfg.Log.Output = cfg.TUI.LogFile
		if cfg.Log.Output == "" {
			cfg.Log.Output = "discard"
		}
	}
	closer, err := logger.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	appCfg, logCloser = cfg, closer
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}
