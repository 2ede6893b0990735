package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the trivia archiver
type Config struct {
	// OpenTDB API settings
	API APIConfig `yaml:"api" json:"api"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Asset catalogue settings
	Catalogue CatalogueConfig `yaml:"catalogue" json:"catalogue"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds OpenTDB API configuration
type APIConfig struct {
	BaseURL            string        `yaml:"base_url" json:"base_url"`
	RequestTimeout     time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MinRequestInterval time.Duration `yaml:"min_request_interval" json:"min_request_interval"`
	MaxRetries         int           `yaml:"max_retries" json:"max_retries"`
	RetryBackoffBase   time.Duration `yaml:"retry_backoff_base" json:"retry_backoff_base"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// CatalogueConfig holds asset catalogue configuration
type CatalogueConfig struct {
	DataDirectory       string   `yaml:"data_directory" json:"data_directory"`
	AssetsDirectory     string   `yaml:"assets_directory" json:"assets_directory"`
	APIHost             string   `yaml:"api_host" json:"api_host"`
	Model               string   `yaml:"model" json:"model"`
	Temperature         float64  `yaml:"temperature" json:"temperature"`
	BatchSize           int      `yaml:"batch_size" json:"batch_size"`
	SupportedExtensions []string `yaml:"supported_extensions" json:"supported_extensions"`
	RequiredFields      []string `yaml:"required_fields" json:"required_fields"`
	StrictMode          bool     `yaml:"strict_mode" json:"strict_mode"`
	DescriptionsEnabled bool     `yaml:"descriptions_enabled" json:"descriptions_enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
// The minimum request interval sits slightly above the API's stated
// 5 second floor to absorb clock skew between us and the server.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:            "https://opentdb.com",
			RequestTimeout:     30 * time.Second,
			MinRequestInterval: 5100 * time.Millisecond,
			MaxRetries:         3,
			RetryBackoffBase:   10 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: "./data/opentdb",
		},
		Catalogue: CatalogueConfig{
			DataDirectory:   "./data/catalogue",
			AssetsDirectory: "./assets",
			APIHost:         "http://localhost:11434",
			Model:           "llama2",
			Temperature:     0.7,
			BatchSize:       100,
			SupportedExtensions: []string{
				".jpg", ".jpeg", ".png", ".mp3", ".wav", ".mp4", ".mov",
			},
			RequiredFields:      []string{"name", "type", "path", "created_at"},
			StrictMode:          true,
			DescriptionsEnabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("TRIVIAFETCH_API_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if interval := os.Getenv("TRIVIAFETCH_MIN_REQUEST_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid TRIVIAFETCH_MIN_REQUEST_INTERVAL: %w", err)
		}
		c.API.MinRequestInterval = d
	}
	if retries := os.Getenv("TRIVIAFETCH_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val >= 0 {
			c.API.MaxRetries = val
		}
	}
	if outputDir := os.Getenv("TRIVIAFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if host := os.Getenv("TRIVIAFETCH_OLLAMA_HOST"); host != "" {
		c.Catalogue.APIHost = host
	}
	if model := os.Getenv("TRIVIAFETCH_OLLAMA_MODEL"); model != "" {
		c.Catalogue.Model = model
	}
	if assetsDir := os.Getenv("TRIVIAFETCH_ASSETS_DIR"); assetsDir != "" {
		c.Catalogue.AssetsDirectory = assetsDir
	}
	if logLevel := os.Getenv("TRIVIAFETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".triviafetch.yaml",
		".triviafetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "triviafetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "triviafetch", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".triviafetch.yaml"),
		filepath.Join(os.Getenv("HOME"), ".triviafetch.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.API.MinRequestInterval <= 0 {
		errs = append(errs, errors.New("minimum request interval must be positive"))
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.API.RetryBackoffBase <= 0 {
		errs = append(errs, errors.New("retry backoff base must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Catalogue.Temperature < 0 || c.Catalogue.Temperature > 2 {
		errs = append(errs, errors.New("catalogue temperature must be between 0 and 2"))
	}
	if c.Catalogue.BatchSize <= 0 {
		errs = append(errs, errors.New("catalogue batch size must be positive"))
	}
	if len(c.Catalogue.RequiredFields) == 0 {
		errs = append(errs, errors.New("catalogue required fields cannot be empty"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if assetsDir, ok := flags["assets-dir"].(string); ok && assetsDir != "" {
		c.Catalogue.AssetsDirectory = assetsDir
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Catalogue.DataDirectory = dataDir
	}
	if host, ok := flags["ollama-host"].(string); ok && host != "" {
		c.Catalogue.APIHost = host
	}
	if model, ok := flags["ollama-model"].(string); ok && model != "" {
		c.Catalogue.Model = model
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".triviafetch.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
