// Package config loads server settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/colony-vision-mcp/internal/colony"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel = "COLONY_MCP_LOG_LEVEL"
	EnvWorkers  = "COLONY_MCP_WORKERS"
	EnvConfig   = "COLONY_MCP_CONFIG"
)

// Config holds server settings.
type Config struct {
	// LogLevel is a zerolog level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Workers bounds concurrent analyses in batch runs.
	Workers int `yaml:"workers"`

	// HistorySize is the number of results kept for export and overlay.
	HistorySize int `yaml:"history_size"`

	// OCRLanguage is the default Tesseract language for label reading.
	OCRLanguage string `yaml:"ocr_language"`

	// Defaults are the analysis parameters used when a request omits them.
	Defaults colony.Params `yaml:"defaults"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Workers:     runtime.NumCPU(),
		HistorySize: colony.DefaultHistorySize,
		OCRLanguage: "eng",
		Defaults:    colony.DefaultParams(),
	}
}

// Load reads a YAML file over the defaults. Fields missing from the file
// keep their default values. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables. Unparseable values are errors
// rather than silently ignored.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWorkers, v, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1 (got %d)", c.Workers))
	}
	if c.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("history_size must be >= 1 (got %d)", c.HistorySize))
	}
	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	return errors.Join(errs...)
}
