package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Catalog.Path != filepath.Join(cfg.DataDir, "schemas.db") {
		t.Errorf("unexpected catalog path %s", cfg.Catalog.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"grpc without addr", func(c *Config) { c.GRPC.Addr = "" }},
		{"negative timeout", func(c *Config) { c.GRPC.DialTimeout = -time.Second }},
		{"negative shutdown timeout", func(c *Config) { c.GRPC.ShutdownTimeout = -time.Second }},
		{"zero default version", func(c *Config) { c.Builder.DefaultVersion = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	yamlData := "data_dir: /var/lib/ts\ngrpc:\n  addr: \":7000\"\n  enabled: false\ncatalog:\n  path: /tmp/catalog.db\n"
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadFromFile(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if cfg.DataDir != "/var/lib/ts" || cfg.GRPC.Addr != ":7000" || cfg.GRPC.Enabled {
		t.Errorf("unexpected yaml config %+v", cfg)
	}
	if cfg.Catalog.Path != "/tmp/catalog.db" {
		t.Errorf("unexpected catalog path %s", cfg.Catalog.Path)
	}
	if cfg.Builder.DefaultVersion != 1 {
		t.Errorf("defaults should survive partial files, got version %d", cfg.Builder.DefaultVersion)
	}

	jsonPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(jsonPath, []byte(`{"builder": {"default_version": 3}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = LoadFromFile(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if cfg.Builder.DefaultVersion != 3 {
		t.Errorf("expected default version 3, got %d", cfg.Builder.DefaultVersion)
	}

	if _, err := LoadFromFile(filepath.Join(dir, "config.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	tomlPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(tomlPath, []byte("x = 1"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(tomlPath); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TABLESCHEMA_DATA_DIR", "/srv/schemas")
	t.Setenv("TABLESCHEMA_GRPC_ADDR", ":9999")
	t.Setenv("TABLESCHEMA_GRPC_ENABLED", "0")
	t.Setenv("TABLESCHEMA_GRPC_DIAL_TIMEOUT", "3s")
	t.Setenv("TABLESCHEMA_GRPC_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("TABLESCHEMA_CATALOG_PATH", "/srv/schemas/c.db")
	t.Setenv("TABLESCHEMA_BUILDER_DEFAULT_VERSION", "7")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.DataDir != "/srv/schemas" || cfg.GRPC.Addr != ":9999" || cfg.GRPC.Enabled {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.GRPC.DialTimeout != 3*time.Second {
		t.Errorf("expected 3s dial timeout, got %s", cfg.GRPC.DialTimeout)
	}
	if cfg.GRPC.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected 5s shutdown timeout, got %s", cfg.GRPC.ShutdownTimeout)
	}
	if cfg.Catalog.Path != "/srv/schemas/c.db" || cfg.Builder.DefaultVersion != 7 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Catalog.Path = filepath.Join(dir, "catalog", "schemas.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, d := range []string{cfg.DataDir, filepath.Dir(cfg.Catalog.Path)} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", d)
		}
	}
}
