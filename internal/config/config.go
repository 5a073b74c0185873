// Package config loads application settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/memory-authenticity/internal/scorer"
)

const (
	configPathEnv = "MEMORY_AUTH_CONFIG"
	dbPathEnv     = "MEMORY_AUTH_DB"
	patternsEnv   = "MEMORY_AUTH_PATTERNS"
	logLevelEnv   = "MEMORY_AUTH_LOG_LEVEL"

	defaultDir = ".memory-authenticity"
)

// Config holds settings shared by every command.
type Config struct {
	DBPath       string        `yaml:"db_path"`
	PatternsPath string        `yaml:"patterns_path"`
	LogLevel     string        `yaml:"log_level"`
	Workers      int           `yaml:"workers"`
	Ingest       IngestConfig  `yaml:"ingest"`
	Scoring      scorer.Config `yaml:"scoring"`
}

// IngestConfig controls which documents ingestion picks up.
type IngestConfig struct {
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	MinSize     int      `yaml:"min_size"`
	RelatePeers bool     `yaml:"relate_peers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:   filepath.Join(homeDir(), defaultDir, "memory.db"),
		LogLevel: "info",
		Ingest: IngestConfig{
			Include:     []string{"**/*.md", "**/*.txt", "**/*.json", "**/*.html", "**/*.pdf"},
			Exclude:     []string{"**/.git/**", "**/node_modules/**"},
			MinSize:     100,
			RelatePeers: true,
		},
		Scoring: scorer.DefaultConfig(),
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	if env := os.Getenv(configPathEnv); env != "" {
		return env
	}
	return filepath.Join(homeDir(), defaultDir, "config.yaml")
}

// Load reads path (or DefaultPath when empty) over the defaults and applies
// environment overrides. A missing file is only an error when path was given.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		explicit = os.Getenv(configPathEnv) != ""
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbPathEnv); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(patternsEnv); v != "" {
		c.PatternsPath = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.LogLevel = v
	}
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	return home
}
