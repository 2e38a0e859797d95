package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL == "" {
		t.Fatalf("expected default base url")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %v, want default 30s", cfg.RequestTimeout)
	}
	if cfg.CachePath == "" {
		t.Fatalf("expected default cache path")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("base-url: https://n8n.example.com/rest/\nrequest-timeout: 10s\ncache-key: local-secret\n")
	if errWrite := os.WriteFile(path, content, 0600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://n8n.example.com/rest" {
		t.Fatalf("BaseURL = %q (trailing slash not trimmed?)", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.CacheKey != "local-secret" {
		t.Fatalf("CacheKey = %q", cfg.CacheKey)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte("base-url: https://file.example.com\n"), 0600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	t.Setenv(EnvAPIBaseURL, "https://env.example.com")
	t.Setenv(EnvRequestTimeout, "3s")
	t.Setenv(EnvTelemetryTarget, "https://telemetry.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Fatalf("BaseURL = %q, want env override", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "https://telemetry.example.com" {
		t.Fatalf("telemetry env override not applied: %#v", cfg.Telemetry)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(":\n\t- broken"), 0600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResolveConfigPathDefaults(t *testing.T) {
	resolved := ResolveConfigPath("  ")
	if resolved == "" {
		t.Fatalf("empty resolved path")
	}
	if !filepath.IsAbs(resolved) {
		t.Fatalf("resolved path not absolute: %q", resolved)
	}
}
