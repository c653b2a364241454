package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Index page write modes
const (
	IndexModeAppend    = "append"
	IndexModeOverwrite = "overwrite"
)

// Config holds all configuration options for logpuzzle
type Config struct {
	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RetryAttempts     int           `yaml:"retry_attempts" json:"retry_attempts"`
	RetryBaseDelay    time.Duration `yaml:"retry_base_delay" json:"retry_base_delay"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay" json:"retry_max_delay"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds destination directory configuration
type OutputConfig struct {
	IndexMode string `yaml:"index_mode" json:"index_mode"`
	IndexFile string `yaml:"index_file" json:"index_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	File string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config that reproduces the plain one-shot behavior:
// no retries, no pacing, and an index page that is appended to.
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			Timeout:           30 * time.Second,
			RetryAttempts:     1,
			RetryBaseDelay:    1 * time.Second,
			RetryMaxDelay:     30 * time.Second,
			RequestsPerMinute: 0,
			UserAgent:         "logpuzzle/1.0",
		},
		Output: OutputConfig{
			IndexMode: IndexModeAppend,
			IndexFile: "index.html",
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if timeout := os.Getenv("LOGPUZZLE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOGPUZZLE_TIMEOUT: %w", err))
		} else {
			c.Download.Timeout = d
		}
	}
	if attempts := os.Getenv("LOGPUZZLE_RETRY_ATTEMPTS"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOGPUZZLE_RETRY_ATTEMPTS: %w", err))
		} else {
			c.Download.RetryAttempts = val
		}
	}
	if rpm := os.Getenv("LOGPUZZLE_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOGPUZZLE_REQUESTS_PER_MINUTE: %w", err))
		} else {
			c.Download.RequestsPerMinute = val
		}
	}
	if userAgent := os.Getenv("LOGPUZZLE_USER_AGENT"); userAgent != "" {
		c.Download.UserAgent = userAgent
	}
	if mode := os.Getenv("LOGPUZZLE_INDEX_MODE"); mode != "" {
		c.Output.IndexMode = strings.ToLower(mode)
	}
	if logLevel := os.Getenv("LOGPUZZLE_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("LOGPUZZLE_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
	if metricsFile := os.Getenv("LOGPUZZLE_METRICS_FILE"); metricsFile != "" {
		c.Metrics.File = metricsFile
	}

	return errors.Join(errs...)
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
	locations := []string{
		".logpuzzle.yaml",
		".logpuzzle.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "logpuzzle", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "logpuzzle", "config.yml"),
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

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.RetryAttempts < 1 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}
	if c.Download.RetryBaseDelay < 0 || c.Download.RetryMaxDelay < 0 {
		errs = append(errs, errors.New("retry delays cannot be negative"))
	}
	if c.Download.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	switch c.Output.IndexMode {
	case IndexModeAppend, IndexModeOverwrite:
	default:
		errs = append(errs, fmt.Errorf("invalid index mode %q (want %s or %s)", c.Output.IndexMode, IndexModeAppend, IndexModeOverwrite))
	}
	if c.Output.IndexFile == "" || strings.ContainsAny(c.Output.IndexFile, `/\`) {
		errs = append(errs, errors.New("index file must be a bare file name"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override the loaded values.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.Timeout = timeout
	}
	if retries, ok := flags["retries"].(int); ok {
		c.Download.RetryAttempts = retries
	}
	if mode, ok := flags["index-mode"].(string); ok && mode != "" {
		c.Output.IndexMode = strings.ToLower(mode)
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if metricsFile, ok := flags["metrics-file"].(string); ok && metricsFile != "" {
		c.Metrics.File = metricsFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".logpuzzle.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
