package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath      = "CONFIG_PATH"
	EnvAPIBaseURL      = "API_BASE_URL"
	EnvRequestTimeout  = "API_REQUEST_TIMEOUT"
	EnvCachePath       = "SESSION_CACHE_PATH"
	EnvCacheKey        = "SESSION_CACHE_KEY"
	EnvTelemetryTarget = "TELEMETRY_ENDPOINT"
)

// defaultRequestTimeout is used when the config omits or invalidates the
// request timeout.
const defaultRequestTimeout = 30 * time.Second

// TelemetryConfig holds the telemetry endpoint settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Config holds resolved client configuration values.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	CachePath      string
	CacheKey       string
	Telemetry      TelemetryConfig
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies env overrides and defaults.
// A missing config file is not an error; env vars and defaults apply alone.
func Load(configPath string) (Config, error) {
	// fileConfig maps the YAML fields; durations arrive as strings.
	type fileConfig struct {
		BaseURL        string          `yaml:"base-url"`
		RequestTimeout string          `yaml:"request-timeout"`
		CachePath      string          `yaml:"cache-path"`
		CacheKey       string          `yaml:"cache-key"`
		Telemetry      TelemetryConfig `yaml:"telemetry"`
	}

	cfg := Config{
		BaseURL:        "http://localhost:5678/rest",
		RequestTimeout: defaultRequestTimeout,
		CachePath:      defaultCachePath(),
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var file fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &file); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
		if strings.TrimSpace(file.BaseURL) != "" {
			cfg.BaseURL = file.BaseURL
		}
		if raw := strings.TrimSpace(file.RequestTimeout); raw != "" {
			if timeout, errParse := time.ParseDuration(raw); errParse == nil && timeout > 0 {
				cfg.RequestTimeout = timeout
			}
		}
		if strings.TrimSpace(file.CachePath) != "" {
			cfg.CachePath = file.CachePath
		}
		cfg.CacheKey = file.CacheKey
		cfg.Telemetry = file.Telemetry
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("read config file: %w", errRead)
	}

	if base := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); base != "" {
		cfg.BaseURL = base
	}
	if raw := strings.TrimSpace(os.Getenv(EnvRequestTimeout)); raw != "" {
		if timeout, errParse := time.ParseDuration(raw); errParse == nil && timeout > 0 {
			cfg.RequestTimeout = timeout
		}
	}
	if path := strings.TrimSpace(os.Getenv(EnvCachePath)); path != "" {
		cfg.CachePath = path
	}
	if key := strings.TrimSpace(os.Getenv(EnvCacheKey)); key != "" {
		cfg.CacheKey = key
	}
	if endpoint := strings.TrimSpace(os.Getenv(EnvTelemetryTarget)); endpoint != "" {
		cfg.Telemetry.Endpoint = endpoint
		cfg.Telemetry.Enabled = true
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("missing api base url (set `base-url` in config file or %s)", EnvAPIBaseURL)
	}
	return cfg, nil
}

// defaultCachePath places the session cache under the user config dir.
func defaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.db"
	}
	return filepath.Join(dir, "n8n-session", "session.db")
}
