package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where compass looks for its configuration, relative to the
// working directory.
const DefaultPath = ".compass/config.yaml"

// Config holds all compass configuration.
type Config struct {
	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Generation settings
	Generation GenerationConfig `yaml:"generation"`

	// Export settings
	Export ExportConfig `yaml:"export"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GenerationConfig configures test case generation.
type GenerationConfig struct {
	DefaultCount     int    `yaml:"default_count"`
	AllowedCounts    []int  `yaml:"allowed_counts"`
	FallbackFilename string `yaml:"fallback_filename"`
}

// ExportConfig configures spreadsheet output.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	SheetName string `yaml:"sheet_name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-flash-latest",
			Timeout:  "120s",
		},

		Generation: GenerationConfig{
			DefaultCount:     5,
			AllowedCounts:    []int{3, 5, 7, 10, 15, 20},
			FallbackFilename: "TestCases.xlsx",
		},

		Export: ExportConfig{
			OutputDir: ".",
			SheetName: "Test Cases",
		},

		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       ".compass/logs/compass.log",
			MaxSizeMB:  15,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over the generic Google key
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("COMPASS_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if level := os.Getenv("COMPASS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"gemini"}

// Validate validates the configuration. A missing API key is not a
// validation failure: commands that never call the model (export, show)
// must keep working without one.
func (c *Config) Validate() error {
	if !slices.Contains(ValidProviders, c.LLM.Provider) {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); c.LLM.Timeout != "" && err != nil {
		return fmt.Errorf("invalid llm.timeout %q: %w", c.LLM.Timeout, err)
	}
	if len(c.Generation.AllowedCounts) == 0 {
		return fmt.Errorf("generation.allowed_counts must not be empty")
	}
	for _, n := range c.Generation.AllowedCounts {
		if n <= 0 {
			return fmt.Errorf("generation.allowed_counts contains non-positive value %d", n)
		}
	}
	if !slices.Contains(c.Generation.AllowedCounts, c.Generation.DefaultCount) {
		return fmt.Errorf("generation.default_count %d is not one of %v", c.Generation.DefaultCount, c.Generation.AllowedCounts)
	}
	return nil
}
