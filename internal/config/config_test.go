package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Backend.URL != nil || cfg.Defaults.Lang != nil {
		t.Fatalf("expected empty config: %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[backend]
url = "http://tutor.local:9000"
timeout = "45s"

[backend.breaker]
enabled = true
failures = 5

[defaults]
level = "expert"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Backend.URL == nil || *cfg.Backend.URL != "http://tutor.local:9000" {
		t.Fatalf("unexpected url: %v", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout == nil || *cfg.Backend.Timeout != "45s" {
		t.Fatalf("unexpected timeout: %v", cfg.Backend.Timeout)
	}
	if cfg.Backend.Breaker.Enabled == nil || !*cfg.Backend.Breaker.Enabled {
		t.Fatalf("expected breaker enabled")
	}
	if cfg.Backend.Breaker.Failures == nil || *cfg.Backend.Breaker.Failures != 5 {
		t.Fatalf("unexpected failures: %v", cfg.Backend.Breaker.Failures)
	}
	if cfg.Backend.Breaker.Cooldown != nil {
		t.Fatalf("expected cooldown unset")
	}
	if cfg.Defaults.Level == nil || *cfg.Defaults.Level != "expert" || cfg.Defaults.Lang != nil {
		t.Fatalf("unexpected defaults: %+v", cfg.Defaults)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[backend]\nuri = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "backend.uri") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "codetutor", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultTemplateDir(); got != filepath.Join("/cfg", "codetutor", "templates") {
		t.Fatalf("unexpected template dir %q", got)
	}
	if got := DefaultHistoryPath(); got != filepath.Join("/data", "codetutor", "history.db") {
		t.Fatalf("unexpected history path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "codetutor", "codetutor.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
