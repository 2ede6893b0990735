package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://opentdb.com", cfg.API.BaseURL)
	assert.Equal(t, 5100*time.Millisecond, cfg.API.MinRequestInterval, "interval sits above the API's 5s floor")
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.API.RetryBackoffBase)
	assert.Equal(t, "http://localhost:11434", cfg.Catalogue.APIHost)
	assert.True(t, cfg.Catalogue.StrictMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TRIVIAFETCH_API_BASE_URL", "http://localhost:9999")
	t.Setenv("TRIVIAFETCH_MIN_REQUEST_INTERVAL", "2s")
	t.Setenv("TRIVIAFETCH_MAX_RETRIES", "5")
	t.Setenv("TRIVIAFETCH_OUTPUT_DIR", "/tmp/trivia")
	t.Setenv("TRIVIAFETCH_OLLAMA_MODEL", "mistral")
	t.Setenv("TRIVIAFETCH_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://localhost:9999", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.MinRequestInterval)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, "/tmp/trivia", cfg.Output.BaseDirectory)
	assert.Equal(t, "mistral", cfg.Catalogue.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidInterval(t *testing.T) {
	t.Setenv("TRIVIAFETCH_MIN_REQUEST_INTERVAL", "not-a-duration")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: http://localhost:8080
  max_retries: 7
output:
  base_directory: /tmp/out
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 7, cfg.API.MaxRetries)
	assert.Equal(t, "/tmp/out", cfg.Output.BaseDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Untouched fields keep their defaults
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
}

func TestLoadFromFileMissingExplicitPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile("/nonexistent/config.yaml"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"zero timeout", func(c *Config) { c.API.RequestTimeout = 0 }},
		{"zero interval", func(c *Config) { c.API.MinRequestInterval = 0 }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }},
		{"zero backoff", func(c *Config) { c.API.RetryBackoffBase = 0 }},
		{"empty output dir", func(c *Config) { c.Output.BaseDirectory = "" }},
		{"temperature out of range", func(c *Config) { c.Catalogue.Temperature = 3.5 }},
		{"zero batch size", func(c *Config) { c.Catalogue.BatchSize = 0 }},
		{"no required fields", func(c *Config) { c.Catalogue.RequiredFields = nil }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":       "/tmp/flagged",
		"ollama-model": "phi3",
		"log-level":    "error",
	})

	assert.Equal(t, "/tmp/flagged", cfg.Output.BaseDirectory)
	assert.Equal(t, "phi3", cfg.Catalogue.Model)
	assert.Equal(t, "error", cfg.Logging.Level)
	// Empty values never override
	cfg.MergeCommandLineFlags(map[string]interface{}{"output": ""})
	assert.Equal(t, "/tmp/flagged", cfg.Output.BaseDirectory)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Output.BaseDirectory = "/tmp/roundtrip"
	require.NoError(t, cfg.Save(path))

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.Equal(t, "/tmp/roundtrip", reloaded.Output.BaseDirectory)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  base_directory: /from/file\n"), 0644))

	t.Setenv("TRIVIAFETCH_OUTPUT_DIR", "/from/env")

	cfg, err := Load(path, map[string]interface{}{"output": "/from/flag"})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Output.BaseDirectory, "flags beat env beats file")

	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Output.BaseDirectory)
}
