// Package config loads the optional YAML configuration: session cookies,
// output location, truncation threshold and harvest pacing.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrInvalidMinContentLen = errors.New("min_content_len must be non-negative")
	ErrInvalidMaxRounds     = errors.New("harvest.max_rounds must be at least 1")
	ErrInvalidIdleRounds    = errors.New("harvest.idle_rounds must be at least 1")
	ErrNegativeDelay        = errors.New("harvest delays must be non-negative")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config is the complete tool configuration.
type Config struct {
	OutputDir     string            `yaml:"output_dir"`
	MinContentLen int               `yaml:"min_content_len"`
	Cookies       map[string]string `yaml:"cookies"` // origin -> raw cookie header
	Harvest       HarvestConfig     `yaml:"harvest"`
	Logging       LoggingConfig     `yaml:"logging"`
}

// HarvestConfig bounds list-page discovery and paces batch processing.
type HarvestConfig struct {
	MaxRounds      int `yaml:"max_rounds"`
	IdleRounds     int `yaml:"idle_rounds"`
	ScrollSettleMs int `yaml:"scroll_settle_ms"`
	ItemPauseMs    int `yaml:"item_pause_ms"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		OutputDir:     ".",
		MinContentLen: 120,
		Cookies:       map[string]string{},
		Harvest: HarvestConfig{
			MaxRounds:      30,
			IdleRounds:     3,
			ScrollSettleMs: 1500,
			ItemPauseMs:    800,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if c.MinContentLen < 0 {
		return ErrInvalidMinContentLen
	}
	if c.Harvest.MaxRounds < 1 {
		return ErrInvalidMaxRounds
	}
	if c.Harvest.IdleRounds < 1 {
		return ErrInvalidIdleRounds
	}
	if c.Harvest.ScrollSettleMs < 0 || c.Harvest.ItemPauseMs < 0 {
		return ErrNegativeDelay
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}
