package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8082 || cfg.BatchSize != 50 || cfg.Catalog.Driver != "memory" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RateLimitWindow != time.Minute || cfg.ThemeMatchThreshold != 0.85 {
		t.Errorf("rate window %v, threshold %v", cfg.RateLimitWindow, cfg.ThemeMatchThreshold)
	}
	if cfg.Addr() != "127.0.0.1:8082" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "port: 9000\nbatch_size: 10\nallow_origins:\n  - https://a.example\ncatalog:\n  driver: sqlite\n  dsn: file:test.db\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("DEBUG_EVENTS", "true")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d, want 9000 from file", cfg.Port)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("batch size = %d, want 25 from env", cfg.BatchSize)
	}
	if cfg.Catalog.Driver != "sqlite" || cfg.Catalog.DSN != "file:test.db" {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "https://a.example" {
		t.Errorf("origins = %v", cfg.AllowOrigins)
	}
	if cfg.RateLimitWindow != 30*time.Second || !cfg.DebugEvents {
		t.Errorf("window = %v, debug = %v", cfg.RateLimitWindow, cfg.DebugEvents)
	}
	if !cfg.Profiling {
		t.Error("profiling = false, want true from env")
	}
}

func TestLoadEnvSlices(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	chdir(t, t.TempDir())
	t.Setenv("ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://b.example" {
		t.Errorf("origins = %q", cfg.AllowOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"bad driver", func(c *Config) { c.Catalog.Driver = "mongo" }},
		{"sql without dsn", func(c *Config) { c.Catalog.Driver = "postgres" }},
		{"memory without dir", func(c *Config) { c.Catalog.Dir = "" }},
		{"threshold above one", func(c *Config) { c.ThemeMatchThreshold = 1.5 }},
		{"rate limit without window", func(c *Config) { c.RateLimitWindow = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
	if err := defaults().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("Chdir back: %v", err)
		}
	})
}
