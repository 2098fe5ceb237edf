package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_article_writer/apperr"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"SERPER_API_KEY": "serper-key",
		"GEMINI_API_KEY": "gemini-key",
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "serper-key", cfg.SerperAPIKey)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultTimeout, cfg.LLM.Timeout)
	assert.Equal(t, DefaultResultCount, cfg.ResultCount)
	assert.Equal(t, DefaultLanguage, cfg.Language)
	assert.Equal(t, "127.0.0.1:5000", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvMissingKeys(t *testing.T) {
	for _, key := range []string{"SERPER_API_KEY", "GEMINI_API_KEY"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)

			_, err := FromEnv(envOf(env))
			require.Error(t, err)
			assert.True(t, apperr.IsConfig(err))
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestFromEnvOverrides(t *testing.T) {
	env := baseEnv()
	env["GENERATION_PROVIDER"] = "OpenAI"
	env["GENERATION_MODEL"] = "gemini-2.5-flash"
	env["GENERATION_TIMEOUT"] = "30s"
	env["SEARCH_RESULT_COUNT"] = "5"
	env["ARTICLE_LANGUAGE"] = "ja"
	env["LOG_LEVEL"] = "DEBUG"

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, GeminiOpenAIBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.ResultCount)
	assert.Equal(t, "ja", cfg.Language)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"GENERATION_PROVIDER": "anthropic",
		"GENERATION_TIMEOUT":  "soon",
		"SEARCH_RESULT_COUNT": "50",
		"LOG_LEVEL":           "loud",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			env[key] = val

			_, err := FromEnv(envOf(env))
			require.Error(t, err)
			assert.True(t, apperr.IsConfig(err))
		})
	}
}

func TestFromEnvKeepsCustomBaseURL(t *testing.T) {
	env := baseEnv()
	env["GENERATION_PROVIDER"] = "openai"
	env["GENERATION_BASE_URL"] = "http://localhost:8081/v1/"

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081/v1/", cfg.LLM.BaseURL)
}

func TestLoadDotEnvMissingFileIsFine(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERPER-API-KEY=abc\n"), 0o600))

	err := loadDotEnv(path)
	require.Error(t, err)
	assert.True(t, apperr.IsConfig(err))
	assert.Contains(t, err.Error(), path)
}

func TestLoadDotEnvUnreadablePath(t *testing.T) {
	err := loadDotEnv(t.TempDir())
	require.Error(t, err)
	assert.True(t, apperr.IsConfig(err))
}
