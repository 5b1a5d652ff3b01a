package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the preflight and preview
// pipelines. Values come from hoverpeek.yaml with CLI flags taking
// precedence; zero values fall back to the defaults below.
type Config struct {
	// Network budgets.
	HeadTimeout       time.Duration `yaml:"head_timeout"`
	SniffTimeout      time.Duration `yaml:"sniff_timeout"`
	MaxRedirects      int           `yaml:"max_redirects"`
	WebpageFetchBytes int64         `yaml:"webpage_fetch_bytes"`
	PDFFetchBytes     int64         `yaml:"pdf_fetch_bytes"`
	ImageFetchBytes   int64         `yaml:"image_fetch_bytes"`

	// Cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	CacheDB  string        `yaml:"cache_db"`

	// Generative model.
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	DisablePreview bool    `yaml:"disable_preview"`
}

// DefaultConfig returns the built-in budgets from the preflight design.
func DefaultConfig() Config {
	return Config{
		HeadTimeout:       1500 * time.Millisecond,
		SniffTimeout:      1500 * time.Millisecond,
		MaxRedirects:      3,
		WebpageFetchBytes: 48 * 1024,
		PDFFetchBytes:     2 * 1024 * 1024,
		ImageFetchBytes:   5 * 1024 * 1024,
		CacheTTL:          5 * time.Minute,
		CacheDB:           "hoverpeek.db",
		Model:             "claude-3-5-haiku-latest",
		MaxTokens:         512,
		Temperature:       0.2,
		APIKeyEnv:         "ANTHROPIC_API_KEY",
	}
}

// LoadConfig reads the YAML config at path, layering it over defaults.
// A missing file is not an error; the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
