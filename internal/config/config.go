// Package config loads client configuration from the environment, with an
// optional .env file picked up from the working directory.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the client needs to reach one backend.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	ConfigDir      string
	Debug          bool
}

// Load reads configuration from the environment. A missing .env is fine.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:        getEnv("STOCKPILOT_ADDR", "http://localhost:8080"),
		RequestTimeout: getDuration("STOCKPILOT_TIMEOUT", 10*time.Second),
		UploadTimeout:  getDuration("STOCKPILOT_UPLOAD_TIMEOUT", 30*time.Second),
		ConfigDir:      os.Getenv("STOCKPILOT_CONFIG_DIR"),
		Debug:          os.Getenv("STOCKPILOT_DEBUG") == "1",
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = defaultConfigDir()
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func defaultConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "stockpilot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stockpilot")
}
