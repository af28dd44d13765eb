// Package config loads and validates the YAML configuration for the sync
// binaries. `${VAR}` references in the file are expanded from the
// environment before parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DBConfig     `yaml:"database"`
	Source   SourceConfig `yaml:"source"`
	Sync     SyncConfig   `yaml:"sync"`
	Importer ImportConfig `yaml:"importer"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// SourceConfig holds market-data API settings.
type SourceConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// SyncConfig holds orchestrator settings. FetchDelaySeconds is the minimum
// interval between fetch starts against the source, shared across workers.
type SyncConfig struct {
	FetchDelaySeconds float64 `yaml:"fetch_delay_seconds"`
	Concurrency       int     `yaml:"concurrency"`
	AsOf              string  `yaml:"as_of"` // YYYY-MM-DD; empty = today
}

// FetchDelay returns the inter-fetch delay as a duration.
func (s SyncConfig) FetchDelay() time.Duration {
	return time.Duration(s.FetchDelaySeconds * float64(time.Second))
}

// ImportConfig holds bulk CSV importer settings.
type ImportConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
