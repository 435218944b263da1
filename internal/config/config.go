// Package config provides configuration management for lakbay.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"lakbay.yaml",
	"lakbay.yml",
	"/etc/lakbay/config.yaml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "LAKBAY_CONFIG"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds the history store settings.
type DatabaseConfig struct {
	Path     string `koanf:"path"`
	MaxConns int    `koanf:"max_conns"`
}

// DatasetConfig holds the reference destination dataset settings.
type DatasetConfig struct {
	Path string `koanf:"path"`
}

// ModelConfig holds classifier artifact settings.
type ModelConfig struct {
	Path       string `koanf:"path"`
	Algorithm  string `koanf:"algorithm"` // "naivebayes" or "knn"
	AutoReload bool   `koanf:"auto_reload"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Dataset  DatasetConfig  `koanf:"dataset"`
	Model    ModelConfig    `koanf:"model"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:     "data/lakbay.db",
			MaxConns: 4,
		},
		Dataset: DatasetConfig{
			Path: "data/destinations.csv",
		},
		Model: ModelConfig{
			Path:       "data/model.json",
			Algorithm:  "naivebayes",
			AutoReload: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from layered sources:
//
//  1. built-in defaults
//  2. optional YAML config file
//  3. LAKBAY_* environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// LAKBAY_SERVER_PORT -> server.port, LAKBAY_MODEL_AUTO_RELOAD -> model.auto_reload
	envProvider := env.Provider("LAKBAY_", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps LAKBAY_* environment variables to koanf paths.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "LAKBAY_"))

	mappings := map[string]string{
		"server_host":        "server.host",
		"server_port":        "server.port",
		"server_timeout":     "server.timeout",
		"database_path":      "database.path",
		"database_max_conns": "database.max_conns",
		"dataset_path":       "dataset.path",
		"model_path":         "model.path",
		"model_algorithm":    "model.algorithm",
		"model_auto_reload":  "model.auto_reload",
		"log_level":          "logging.level",
		"log_format":         "logging.format",
	}
	if mapped, ok := mappings[key]; ok {
		return mapped
	}
	// Unmapped keys are skipped so unrelated environment variables
	// cannot pollute the config.
	return ""
}
