package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"assist/internal/logger"
)

// LLMConfig selects and configures the text completion provider.
type LLMConfig struct {
	Provider string              `yaml:"provider"`
	OpenAI   *OpenAILLMConfig    `yaml:"openai,omitempty"`
	Gemini   *GeminiClientConfig `yaml:"gemini,omitempty"`
}

// OpenAILLMConfig holds configuration for an OpenAI-compatible chat endpoint.
type OpenAILLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// GeminiClientConfig holds configuration shared by Gemini generation and embeddings.
type GeminiClientConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// GeminiEmbedderConfig configures Gemini embeddings.
type GeminiEmbedderConfig struct {
	APIKeyEnv     string `yaml:"api_key_env"`
	Model         string `yaml:"model"`
	TaskType      string `yaml:"task_type"`
	QueryTaskType string `yaml:"query_task_type"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Gemini *GeminiEmbedderConfig `yaml:"gemini,omitempty"`
}

// ChunkerConfig configures how transcripts are split into chunks.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig configures top-k retrieval.
type RetrievalConfig struct {
	TopK         int    `yaml:"top_k"`
	SummaryQuery string `yaml:"summary_query"`
	QuizQuery    string `yaml:"quiz_query"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store. Every
// run creates its own collection named CollectionPrefix-<uuid>.
type QdrantConfig struct {
	URL              string `yaml:"url"`
	APIKeyEnv        string `yaml:"api_key_env"`
	CollectionPrefix string `yaml:"collection_prefix"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
}

// TranscriptConfig configures caption fetching.
type TranscriptConfig struct {
	WatchURL    string   `yaml:"watch_url"`
	Languages   []string `yaml:"languages"`
	TimeoutSecs int      `yaml:"timeout_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	RequestTimeout int    `yaml:"request_timeout_secs"`
}

// TUIConfig configures the terminal UI.
type TUIConfig struct {
	LogFile string `yaml:"log_file"`
	PDFPath string `yaml:"pdf_path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LLM         LLMConfig         `yaml:"llm"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Transcript  TranscriptConfig  `yaml:"transcript"`
	Server      ServerConfig      `yaml:"server"`
	TUI         TUIConfig         `yaml:"tui"`
	Log         logger.Config     `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, cfg.Validate()
}

// LoadDefault tries ./config.yaml first, then ~/.config/assist/config.yaml.
// If neither exists, it writes defaults to ~/.config/assist/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath is ~/.config/assist/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "assist", "config.yaml"), nil
}

// Validate rejects unknown component types.
func (c *AppConfig) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	switch c.Embedder.Type {
	case "openai", "gemini", "tfidf":
	default:
		return fmt.Errorf("unknown embedder: %q", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory", "qdrant":
	default:
		return fmt.Errorf("unknown vector store: %q", c.VectorStore.Type)
	}
	if c.Chunker.Overlap >= c.Chunker.Size {
		return fmt.Errorf("chunker overlap %d must be smaller than size %d", c.Chunker.Overlap, c.Chunker.Size)
	}
	return nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		LLM:         LLMConfig{Provider: "openai"},
		Embedder:    EmbedderConfig{Type: "openai"},
		Chunker:     ChunkerConfig{Size: 1000, Overlap: 150},
		Retrieval:   RetrievalConfig{TopK: 5, SummaryQuery: "summary of full video", QuizQuery: "quiz from full content"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Transcript:  TranscriptConfig{Languages: []string{"en"}, TimeoutSecs: 30},
		Server:      ServerConfig{Addr: ":8080", MaxUploadBytes: 10 << 20, RequestTimeout: 300},
		TUI:         TUIConfig{PDFPath: "cover_letter.pdf"},
		Log:         logger.Config{Level: "info", Format: "pretty", Output: "stderr"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.OpenAI == nil {
			cfg.LLM.OpenAI = &OpenAILLMConfig{}
		}
		o := cfg.LLM.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "gpt-5.1"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 120
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = 3
		}
	case "gemini":
		if cfg.LLM.Gemini == nil {
			cfg.LLM.Gemini = &GeminiClientConfig{}
		}
		if cfg.LLM.Gemini.APIKeyEnv == "" {
			cfg.LLM.Gemini.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.LLM.Gemini.Model == "" {
			cfg.LLM.Gemini.Model = "gemini-2.5-flash"
		}
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	switch cfg.Embedder.Type {
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		e := cfg.Embedder.OpenAI
		if e.BaseURL == "" {
			e.BaseURL = "https://api.openai.com/v1"
		}
		if e.APIKeyEnv == "" {
			e.APIKeyEnv = "OPENAI_API_KEY"
		}
		if e.Model == "" {
			e.Model = "text-embedding-3-small"
		}
		if e.TimeoutSecs == 0 {
			e.TimeoutSecs = 30
		}
		if e.MaxRetries == 0 {
			e.MaxRetries = 3
		}
	case "gemini":
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
		}
		if cfg.Embedder.Gemini.APIKeyEnv == "" {
			cfg.Embedder.Gemini.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Embedder.Gemini.Model == "" {
			cfg.Embedder.Gemini.Model = "text-embedding-004"
		}
		if cfg.Embedder.Gemini.TaskType == "" {
			cfg.Embedder.Gemini.TaskType = "RETRIEVAL_DOCUMENT"
		}
		if cfg.Embedder.Gemini.QueryTaskType == "" {
			cfg.Embedder.Gemini.QueryTaskType = "RETRIEVAL_QUERY"
		}
	}

	if cfg.Chunker.Size <= 0 {
		cfg.Chunker.Size = 1000
	}
	if cfg.Chunker.Overlap < 0 {
		cfg.Chunker.Overlap = 0
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		q := cfg.VectorStore.Qdrant
		if q.URL == "" {
			q.URL = "http://localhost:6333"
		}
		if q.APIKeyEnv == "" {
			q.APIKeyEnv = "QDRANT_API_KEY"
		}
		if q.CollectionPrefix == "" {
			q.CollectionPrefix = "assist"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 30
		}
	}

	if len(cfg.Transcript.Languages) == 0 {
		cfg.Transcript.Languages = []string{"en"}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
