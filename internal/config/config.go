package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pdfchat/internal/models"
)

const (
	ProviderLangchain = "langchain"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

type Config struct {
	Log       LogConfig    `yaml:"log"`
	Server    ServerConfig `yaml:"server"`
	Chat      LLMConfig    `yaml:"chat"`
	Embedding LLMConfig    `yaml:"embedding"`
	RAG       RAGConfig    `yaml:"rag"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Address    string        `yaml:"address"`
	MaxUpload  string        `yaml:"max_upload"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// LLMConfig describes a hosted model endpoint, used for both chat and embeddings
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	BatchSize   int     `yaml:"batch_size"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Address:    ":8080",
			MaxUpload:  "50M",
			SessionTTL: 2 * time.Hour,
		},
		Chat: LLMConfig{
			Provider:    ProviderLangchain,
			BaseURL:     models.DefaultChatBaseURL,
			Model:       models.DefaultChatModel,
			Temperature: 0.1,
		},
		Embedding: LLMConfig{
			Provider:  ProviderOllama,
			BaseURL:   "http://localhost:11434",
			Model:     "all-minilm",
			BatchSize: 64,
		},
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         4,
		},
	}
}

// LoadConfig reads the yaml file at path over the defaults, so keys present in
// the file win even when zero, then applies environment overrides. A missing
// file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Chat.Key, os.Getenv("OPENROUTER_API_KEY"))
	setString(&cfg.Chat.BaseURL, os.Getenv("OPENROUTER_BASE_URL"))
	setString(&cfg.Chat.Model, os.Getenv("CHAT_MODEL"))
	setString(&cfg.Embedding.Provider, os.Getenv("EMBEDDING_PROVIDER"))
	setString(&cfg.Embedding.BaseURL, os.Getenv("EMBEDDING_BASE_URL"))
	setString(&cfg.Embedding.Key, os.Getenv("EMBEDDING_API_KEY"))
	setString(&cfg.Embedding.Model, os.Getenv("EMBEDDING_MODEL"))
	setString(&cfg.Server.Address, os.Getenv("PDFCHAT_ADDR"))
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Validate reports the first setting that prevents the pipeline from running.
func (c *Config) Validate() error {
	if c.Chat.Key == "" {
		return &models.ConfigurationError{Field: "chat.api_key", Message: models.MsgMissingAPIKey}
	}
	switch c.Chat.Provider {
	case ProviderLangchain, ProviderOpenAI:
	default:
		return &models.ConfigurationError{Field: "chat.provider", Message: fmt.Sprintf("unknown chat provider %q", c.Chat.Provider)}
	}
	switch c.Embedding.Provider {
	case ProviderOllama:
	case ProviderOpenAI:
		if c.Embedding.Key == "" {
			return &models.ConfigurationError{Field: "embedding.api_key", Message: "embedding provider openai requires an api key"}
		}
	default:
		return &models.ConfigurationError{Field: "embedding.provider", Message: fmt.Sprintf("unknown embedding provider %q", c.Embedding.Provider)}
	}
	if c.RAG.ChunkSize <= 0 || c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return &models.ConfigurationError{
			Field:   "rag.chunk_size",
			Message: fmt.Sprintf("chunk_size must be positive and greater than chunk_overlap (got %d/%d)", c.RAG.ChunkSize, c.RAG.ChunkOverlap),
		}
	}
	if c.RAG.TopK <= 0 {
		return &models.ConfigurationError{Field: "rag.top_k", Message: "top_k must be positive"}
	}
	return nil
}
