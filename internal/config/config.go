// Package config provides unified configuration for the tableschema tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the unified configuration.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// gRPC configuration
	GRPC GRPCConfig `json:"grpc" yaml:"grpc"`

	// Catalog configuration
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	// Builder defaults applied to table definitions
	Builder BuilderConfig `json:"builder" yaml:"builder"`
}

// GRPCConfig holds gRPC server and client configuration.
type GRPCConfig struct {
	// Addr is the gRPC server address
	Addr string `json:"addr" yaml:"addr"`

	// Enabled controls whether the schema service is served
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DialTimeout bounds client calls made by the CLI
	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout"`

	// ShutdownTimeout bounds graceful shutdown of the schema service
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// CatalogConfig holds schema catalog configuration.
type CatalogConfig struct {
	// Path is the SQLite database file; defaults to <data_dir>/schemas.db
	Path string `json:"path" yaml:"path"`
}

// BuilderConfig holds defaults for schemas built from definition files.
type BuilderConfig struct {
	// DefaultVersion is used when a definition does not set a version
	DefaultVersion uint32 `json:"default_version" yaml:"default_version"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/tableschema",
		GRPC: GRPCConfig{
			Addr:            ":9090",
			Enabled:         true,
			DialTimeout:     10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Builder: BuilderConfig{
			DefaultVersion: 1,
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/tableschema"
	}

	if c.Catalog.Path == "" {
		c.Catalog.Path = filepath.Join(c.DataDir, "schemas.db")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.GRPC.Enabled && c.GRPC.Addr == "" {
		return fmt.Errorf("grpc.addr is required when grpc is enabled")
	}

	if c.GRPC.DialTimeout < 0 {
		return fmt.Errorf("grpc.dial_timeout must not be negative, got %s", c.GRPC.DialTimeout)
	}

	if c.GRPC.ShutdownTimeout < 0 {
		return fmt.Errorf("grpc.shutdown_timeout must not be negative, got %s", c.GRPC.ShutdownTimeout)
	}

	if c.Builder.DefaultVersion == 0 {
		return fmt.Errorf("builder.default_version must be positive")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the TABLESCHEMA_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TABLESCHEMA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// gRPC configuration
	if v := os.Getenv("TABLESCHEMA_GRPC_ADDR"); v != "" {
		cfg.GRPC.Addr = v
	}
	if v := os.Getenv("TABLESCHEMA_GRPC_ENABLED"); v != "" {
		cfg.GRPC.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TABLESCHEMA_GRPC_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GRPC.DialTimeout = d
		}
	}
	if v := os.Getenv("TABLESCHEMA_GRPC_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GRPC.ShutdownTimeout = d
		}
	}

	// Catalog configuration
	if v := os.Getenv("TABLESCHEMA_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}

	// Builder configuration
	if v := os.Getenv("TABLESCHEMA_BUILDER_DEFAULT_VERSION"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Builder.DefaultVersion = uint32(n)
		}
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Dir(c.Catalog.Path),
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
