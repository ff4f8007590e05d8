package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"setmatch-service/internal/validation"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type CatalogConfig struct {
	Driver       string `koanf:"driver" validate:"oneof=memory postgres sqlite"`
	Dir          string `koanf:"dir"`
	DSN          string `koanf:"dsn"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"min=0"`
}

type Config struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"min=1,max=65535"`
	AllowOrigins []string `koanf:"allow_origins"`
	LogLevel     string   `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogFile      string   `koanf:"log_file"`
	MaxUploadMB  int      `koanf:"max_upload_mb" validate:"min=1"`

	Catalog CatalogConfig `koanf:"catalog"`

	BatchSize           int           `koanf:"batch_size" validate:"min=1,max=1000"`
	ThemeMatchThreshold float64       `koanf:"theme_match_threshold" validate:"gt=0,lte=1"`
	RateLimitRequests   int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow     time.Duration `koanf:"rate_limit_window"`
	BreakerEnabled      bool          `koanf:"breaker_enabled"`
	DebugEvents         bool          `koanf:"debug_events"`
	Profiling           bool          `koanf:"profiling"`
}

func defaults() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8082,
		AllowOrigins: []string{"*"},
		LogLevel:     "info",
		LogFile:      "logs/setmatch-service.log",
		MaxUploadMB:  64,
		Catalog: CatalogConfig{
			Driver:       "memory",
			Dir:          "data",
			MaxOpenConns: 10,
		},
		BatchSize:           50,
		ThemeMatchThreshold: 0.85,
		RateLimitRequests:   60,
		RateLimitWindow:     time.Minute,
		BreakerEnabled:      true,
	}
}

// envKeys maps environment variables onto config paths. Anything else in the
// environment is ignored.
var envKeys = map[string]string{
	"HOST":                  "host",
	"PORT":                  "port",
	"ALLOW_ORIGINS":         "allow_origins",
	"LOG_LEVEL":             "log_level",
	"LOG_FILE":              "log_file",
	"MAX_UPLOAD_MB":         "max_upload_mb",
	"CATALOG_DRIVER":        "catalog.driver",
	"CATALOG_DIR":           "catalog.dir",
	"CATALOG_DSN":           "catalog.dsn",
	"CATALOG_AUTO_MIGRATE":  "catalog.auto_migrate",
	"CATALOG_MAX_CONNS":     "catalog.max_open_conns",
	"BATCH_SIZE":            "batch_size",
	"THEME_MATCH_THRESHOLD": "theme_match_threshold",
	"RATE_LIMIT_REQUESTS":   "rate_limit_requests",
	"RATE_LIMIT_WINDOW":     "rate_limit_window",
	"BREAKER_ENABLED":       "breaker_enabled",
	"DEBUG_EVENTS":          "debug_events",
	"PPROF_ENABLED":         "profiling",
}

var sliceKeys = []string{"allow_origins"}

// Load layers defaults, an optional YAML file and the environment, in that
// order of precedence, then validates the result.
func Load() (Config, error) {
	k := koanf.New(".")

	def := defaults()
	if err := k.Load(structs.Provider(&def, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", func(key string) string { return envKeys[key] }), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSlices(k); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitSlices turns comma-separated strings from the environment into lists.
func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	switch c.Catalog.Driver {
	case "memory":
		if c.Catalog.Dir == "" {
			return errors.New("catalog.dir is required for the memory driver")
		}
	default:
		if c.Catalog.DSN == "" {
			return fmt.Errorf("catalog.dsn is required for the %s driver", c.Catalog.Driver)
		}
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return errors.New("rate_limit_window must be positive when rate limiting is on")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }
