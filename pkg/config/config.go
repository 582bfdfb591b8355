package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"igdigest/pkg/errors"
)

// Backend names accepted by StorageConfig.Backend.
const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

// Config holds all configuration options for the digest pipeline.
type Config struct {
	// Apify actor invocation settings
	Apify ApifyConfig `yaml:"apify"`

	// Gemini inference settings
	Gemini GeminiConfig `yaml:"gemini"`

	// Storage backend selection and credentials
	Storage StorageConfig `yaml:"storage"`

	// Media download settings
	Download DownloadConfig `yaml:"download"`

	// Web server settings
	Server ServerConfig `yaml:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// ApifyConfig holds scraping-actor settings.
type ApifyConfig struct {
	Token          string        `yaml:"token"`
	ActorID        string        `yaml:"actor_id"`
	ResultsLimit   int           `yaml:"results_limit"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	MaxRunWait     time.Duration `yaml:"max_run_wait"`
}

// GeminiConfig holds generative-AI backend settings.
type GeminiConfig struct {
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	MaxProcessingWait time.Duration `yaml:"max_processing_wait"`
}

// StorageConfig selects and configures the content repository backend.
// The local backend needs only a data directory; the cloud backend needs
// a Postgres connection string and a GCS bucket.
type StorageConfig struct {
	Backend         string `yaml:"backend"`
	DataDir         string `yaml:"data_dir"`
	DatabaseURL     string `yaml:"database_url"`
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
}

// DownloadConfig holds media download settings.
type DownloadConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// ServerConfig holds web front end settings.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	FrontendURL string `yaml:"frontend_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Apify: ApifyConfig{
			ActorID:        "apify~instagram-post-scraper",
			ResultsLimit:   7,
			RequestTimeout: 30 * time.Second,
			PollInterval:   5 * time.Second,
			MaxRunWait:     10 * time.Minute,
		},
		Gemini: GeminiConfig{
			Model:             "gemini-1.5-pro",
			RequestTimeout:    600 * time.Second,
			MaxAttempts:       3,
			RetryDelay:        5 * time.Second,
			PollInterval:      10 * time.Second,
			MaxProcessingWait: 10 * time.Minute,
		},
		Storage: StorageConfig{
			Backend: BackendLocal,
			DataDir: "./data",
		},
		Download: DownloadConfig{
			Timeout:   60 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML config
// file (explicit path or a standard location), then environment variables.
// A .env file is honored the way the rest of the tooling expects.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	cfg.LoadFromEnv()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. An empty path falls
// back to the standard locations; a missing file is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Newf(errors.ErrorTypeConfig, "failed to read config file: %v", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Newf(errors.ErrorTypeConfig, "failed to parse config file: %v", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".igdigest.yaml",
		".igdigest.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igdigest", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igdigest.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadFromEnv loads configuration overrides from environment variables.
func (c *Config) LoadFromEnv() {
	if token := os.Getenv("APIFY_TOKEN"); token != "" {
		c.Apify.Token = token
	}
	if actor := os.Getenv("APIFY_ACTOR_ID"); actor != "" {
		c.Apify.ActorID = actor
	}
	if limit := os.Getenv("APIFY_RESULTS_LIMIT"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			c.Apify.ResultsLimit = val
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Gemini.Model = model
	}

	if backend := os.Getenv("IGDIGEST_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
	if dir := os.Getenv("IGDIGEST_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if dbURL := os.Getenv("POSTGRES_URL"); dbURL != "" {
		c.Storage.DatabaseURL = dbURL
	} else if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Storage.DatabaseURL = dbURL
	}
	if bucket := os.Getenv("GCS_BUCKET_NAME"); bucket != "" {
		c.Storage.Bucket = bucket
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		c.Storage.CredentialsFile = creds
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		c.Server.FrontendURL = frontend
	}

	if level := os.Getenv("IGDIGEST_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks if the configuration is valid. All problems are reported
// at once so a misconfigured deployment fails fast with the full picture.
func (c *Config) Validate() error {
	var problems []string

	if c.Apify.Token == "" {
		problems = append(problems, "Apify API token is required (APIFY_TOKEN)")
	}
	if c.Apify.ActorID == "" {
		problems = append(problems, "Apify actor ID is required")
	}
	if c.Apify.ResultsLimit <= 0 {
		problems = append(problems, "results limit must be positive")
	}

	if c.Gemini.APIKey == "" {
		problems = append(problems, "Gemini API key is required (GEMINI_API_KEY)")
	}
	if c.Gemini.Model == "" {
		problems = append(problems, "Gemini model is required")
	}
	if c.Gemini.MaxAttempts <= 0 {
		problems = append(problems, "max attempts must be positive")
	}
	if c.Gemini.PollInterval <= 0 {
		problems = append(problems, "processing poll interval must be positive")
	}

	switch c.Storage.Backend {
	case BackendLocal:
		if c.Storage.DataDir == "" {
			problems = append(problems, "data directory is required for the local backend")
		}
	case BackendCloud:
		if c.Storage.DatabaseURL == "" {
			problems = append(problems, "database connection string is required for the cloud backend (POSTGRES_URL)")
		}
		if c.Storage.Bucket == "" {
			problems = append(problems, "object-store bucket name is required for the cloud backend (GCS_BUCKET_NAME)")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}

	if c.Download.Timeout <= 0 {
		problems = append(problems, "download timeout must be positive")
	}
	if c.Server.Addr == "" {
		problems = append(problems, "server address is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, "invalid log level")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrorTypeConfig, strings.Join(problems, "; "))
	}

	return nil
}
