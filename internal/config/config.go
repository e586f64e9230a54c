package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for go-branch-query
type Config struct {
	// Verbose enables debug logging
	Verbose bool `yaml:"verbose" env:"GBQ_VERBOSE"`

	// JSONOutput switches reports from text traces to JSON
	JSONOutput bool `yaml:"json_output" env:"GBQ_JSON_OUTPUT"`

	// Cache settings
	CacheEnabled    bool   `yaml:"cache_enabled" env:"GBQ_CACHE_ENABLED"`
	CacheDir        string `yaml:"cache_dir" env:"GBQ_CACHE_DIR"`
	CacheMaxEntries int    `yaml:"cache_max_entries" env:"GBQ_CACHE_MAX_ENTRIES"`

	// MaxFileSize is the largest source file (in bytes) the analyzer will parse
	MaxFileSize int64 `yaml:"max_file_size" env:"GBQ_MAX_FILE_SIZE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Verbose:         false,
		JSONOutput:      false,
		CacheEnabled:    true,
		CacheDir:        defaultCacheDir(),
		CacheMaxEntries: 1024,
		MaxFileSize:     1024 * 1024, // 1MB
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gbq/cache"
	}
	return filepath.Join(home, ".gbq", "cache")
}

// globalConfigFilePath returns the global config file path (~/.gbq/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gbq/config.yaml"
	}
	return filepath.Join(home, ".gbq", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.gbq/config.yaml)
func projectConfigFilePath() string {
	return ".gbq/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.gbq/config.yaml)
// 3. Global config (~/.gbq/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// 1. Load global config (~/.gbq/config.yaml)
	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	// 2. Load project-level config (./.gbq/config.yaml) - overrides global
	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	// 3. Override with environment variables
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// SaveGlobal writes the configuration to ~/.gbq/config.yaml
func (c *Config) SaveGlobal() error {
	return c.Save(globalConfigFilePath())
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GBQ_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := os.Getenv("GBQ_JSON_OUTPUT"); v != "" {
		cfg.JSONOutput = parseBool(v)
	}
	if v := os.Getenv("GBQ_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("GBQ_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GBQ_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxEntries = n
		}
	}
	if v := os.Getenv("GBQ_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxFileSize = n
		}
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache_max_entries must be positive, got %d", c.CacheMaxEntries)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.CacheEnabled && c.CacheDir == "" {
		return fmt.Errorf("cache_dir must be set when cache is enabled")
	}
	return nil
}
