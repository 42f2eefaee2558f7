package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Reading.WPM != nil {
		t.Fatalf("expected empty config, got wpm %v", *cfg.Reading.WPM)
	}
}

func TestLoadConfigTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(DefaultTemplate(300, "flash", 4, 72)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Reading.WPM == nil || *cfg.Reading.WPM != 300 {
		t.Fatalf("unexpected wpm: %v", cfg.Reading.WPM)
	}
	if cfg.Reading.Technique == nil || *cfg.Reading.Technique != "flash" {
		t.Fatalf("unexpected technique: %v", cfg.Reading.Technique)
	}
	if cfg.Store.Backend == nil || *cfg.Store.Backend != "sqlite" {
		t.Fatalf("unexpected backend: %v", cfg.Store.Backend)
	}
	if cfg.Store.RedisAddr != nil {
		t.Fatalf("commented key should stay unset")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[reading]\nspeed = 10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "flowread", "config.toml") {
		t.Fatalf("config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "flowread", "flowread.db") {
		t.Fatalf("db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "flowread", "flowread.log") {
		t.Fatalf("log path: %s", got)
	}
}
