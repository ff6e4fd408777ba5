package config

import (
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STOCKPILOT_ADDR", "STOCKPILOT_TIMEOUT", "STOCKPILOT_UPLOAD_TIMEOUT",
		"STOCKPILOT_CONFIG_DIR", "STOCKPILOT_DEBUG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("BaseURL=%q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.UploadTimeout != 30*time.Second {
		t.Fatalf("timeouts: %v / %v", cfg.RequestTimeout, cfg.UploadTimeout)
	}
	if cfg.Debug {
		t.Fatalf("Debug defaults off")
	}
	if filepath.Base(cfg.ConfigDir) != "stockpilot" {
		t.Fatalf("ConfigDir=%q", cfg.ConfigDir)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("STOCKPILOT_ADDR", "https://inv.example.com")
	t.Setenv("STOCKPILOT_TIMEOUT", "2s")
	t.Setenv("STOCKPILOT_UPLOAD_TIMEOUT", "1m")
	t.Setenv("STOCKPILOT_CONFIG_DIR", dir)
	t.Setenv("STOCKPILOT_DEBUG", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://inv.example.com" {
		t.Fatalf("BaseURL=%q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 2*time.Second || cfg.UploadTimeout != time.Minute {
		t.Fatalf("timeouts: %v / %v", cfg.RequestTimeout, cfg.UploadTimeout)
	}
	if cfg.ConfigDir != dir || !cfg.Debug {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOCKPILOT_TIMEOUT", "soon")
	t.Setenv("STOCKPILOT_UPLOAD_TIMEOUT", "-5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.UploadTimeout != 30*time.Second {
		t.Fatalf("bad durations must fall back: %v / %v", cfg.RequestTimeout, cfg.UploadTimeout)
	}
}
