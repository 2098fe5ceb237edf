// Package config loads the writer's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"seo_article_writer/apperr"
)

const (
	// ServerAddr is fixed; the app is a local tool.
	ServerAddr = "127.0.0.1:5000"

	DefaultModel        = "gemini-2.0-flash"
	DefaultLanguage     = "en"
	DefaultResultCount  = 3
	DefaultTimeout      = 90 * time.Second
	GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	maxResultCount = 10
)

// Config holds everything the server needs at startup.
type Config struct {
	SerperAPIKey string
	Language     string
	ResultCount  int
	LLM          LLMConfig
	ServerAddr   string
	LogLevel     string
}

// LLMConfig selects and configures the generation backend.
type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Load reads an optional .env file, then the environment. Missing API keys and
// malformed values are reported as config errors.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

// loadDotEnv applies path to the environment. A missing file is fine; an
// unreadable or malformed one is a config error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return apperr.Config(fmt.Sprintf("failed to load %s", path), err)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		SerperAPIKey: get("SERPER_API_KEY", ""),
		Language:     get("ARTICLE_LANGUAGE", DefaultLanguage),
		ResultCount:  DefaultResultCount,
		ServerAddr:   ServerAddr,
		LogLevel:     strings.ToLower(get("LOG_LEVEL", "info")),
		LLM: LLMConfig{
			Provider: strings.ToLower(get("GENERATION_PROVIDER", "gemini")),
			Model:    get("GENERATION_MODEL", DefaultModel),
			APIKey:   get("GEMINI_API_KEY", ""),
			BaseURL:  get("GENERATION_BASE_URL", ""),
			Timeout:  DefaultTimeout,
		},
	}

	if cfg.SerperAPIKey == "" {
		return Config{}, apperr.Config("SERPER_API_KEY is not set; export it or add it to .env", nil)
	}
	if cfg.LLM.APIKey == "" {
		return Config{}, apperr.Config("GEMINI_API_KEY is not set; export it or add it to .env", nil)
	}

	if v := getenv("SEARCH_RESULT_COUNT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, apperr.Config(fmt.Sprintf("invalid SEARCH_RESULT_COUNT %q", v), err)
		}
		if n < 1 || n > maxResultCount {
			return Config{}, apperr.Config(fmt.Sprintf("SEARCH_RESULT_COUNT must be between 1 and %d, got %d", maxResultCount, n), nil)
		}
		cfg.ResultCount = n
	}

	if v := getenv("GENERATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return Config{}, apperr.Config(fmt.Sprintf("invalid GENERATION_TIMEOUT %q", v), err)
		}
		if d <= 0 {
			return Config{}, apperr.Config("GENERATION_TIMEOUT must be positive", nil)
		}
		cfg.LLM.Timeout = d
	}

	switch cfg.LLM.Provider {
	case "gemini", "mock":
	case "openai":
		// Gemini serves an OpenAI-compatible endpoint, so the same key works.
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = GeminiOpenAIBaseURL
		}
	default:
		return Config{}, apperr.Config(fmt.Sprintf("GENERATION_PROVIDER %q not supported (gemini, openai, mock)", cfg.LLM.Provider), nil)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, apperr.Config(fmt.Sprintf("invalid LOG_LEVEL %q", cfg.LogLevel), nil)
	}

	return cfg, nil
}
