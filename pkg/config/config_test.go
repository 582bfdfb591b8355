package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igdigest/pkg/errors"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Apify.Token = "apify_api_test"
	cfg.Gemini.APIKey = "gemini_test"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "apify~instagram-post-scraper", cfg.Apify.ActorID)
	assert.Equal(t, 7, cfg.Apify.ResultsLimit)
	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 600*time.Second, cfg.Gemini.RequestTimeout)
	assert.Equal(t, 3, cfg.Gemini.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Gemini.PollInterval)
	assert.Equal(t, BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, 60*time.Second, cfg.Download.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	t.Run("valid local config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing tokens", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		assert.Contains(t, err.Error(), "APIFY_TOKEN")
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("cloud backend requires database and bucket", func(t *testing.T) {
		cfg := validConfig()
		cfg.Storage.Backend = BackendCloud
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_URL")
		assert.Contains(t, err.Error(), "GCS_BUCKET_NAME")

		cfg.Storage.DatabaseURL = "postgres://localhost/igdigest"
		cfg.Storage.Bucket = "igdigest-media"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.Storage.Backend = "s3"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown storage backend "s3"`)
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "chatty"
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APIFY_TOKEN", "env-token")
	t.Setenv("APIFY_RESULTS_LIMIT", "3")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("IGDIGEST_STORAGE_BACKEND", "Cloud")
	t.Setenv("POSTGRES_URL", "postgres://db/ig")
	t.Setenv("GCS_BUCKET_NAME", "bucket-1")
	t.Setenv("PORT", "9090")
	t.Setenv("IGDIGEST_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "env-token", cfg.Apify.Token)
	assert.Equal(t, 3, cfg.Apify.ResultsLimit)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, BackendCloud, cfg.Storage.Backend)
	assert.Equal(t, "postgres://db/ig", cfg.Storage.DatabaseURL)
	assert.Equal(t, "bucket-1", cfg.Storage.Bucket)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidLimitIgnored(t *testing.T) {
	t.Setenv("APIFY_RESULTS_LIMIT", "not-a-number")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	assert.Equal(t, 7, cfg.Apify.ResultsLimit)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
apify:
  token: file-token
  results_limit: 5
gemini:
  model: gemini-1.5-flash
storage:
  backend: local
  data_dir: /tmp/igdigest-data
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-token", cfg.Apify.Token)
	assert.Equal(t, 5, cfg.Apify.ResultsLimit)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "/tmp/igdigest-data", cfg.Storage.DataDir)
	// untouched defaults survive
	assert.Equal(t, "apify~instagram-post-scraper", cfg.Apify.ActorID)
}

func TestLoadFromFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apify: ["), 0644))

	cfg := DefaultConfig()
	err := cfg.LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
