// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries need to start.
type Config struct {
	// HTTP
	Port string

	// Gemini
	GeminiAPIKey   string
	GeminiModel    string
	GeminiCooldown time.Duration

	// Google Cloud
	GCSBucket string
	BQProject string
	BQDataset string

	LogLevel string
}

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort            = "8080"
	DefaultGeminiModel     = "gemini-2.0-flash"
	DefaultCooldownSeconds = 900
	DefaultLogLevel        = "info"
)

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	// Ignore the error: a missing .env file is the normal case in prod.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", DefaultPort),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GeminiCooldown: time.Duration(DefaultCooldownSeconds) * time.Second,
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		BQProject:      os.Getenv("BQ_PROJECT"),
		BQDataset:      getEnv("BQ_DATASET", "finassist"),
		LogLevel:       getEnv("LOG_LEVEL", DefaultLogLevel),
	}

	if raw := os.Getenv("GEMINI_COOLDOWN_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("config: invalid GEMINI_COOLDOWN_SECONDS %q", raw)
		}
		cfg.GeminiCooldown = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

// LLMEnabled reports whether the LLM fallback can be used at all.
func (c *Config) LLMEnabled() bool {
	return c.GeminiAPIKey != ""
}

// PersistenceEnabled reports whether a BigQuery-backed store is configured.
func (c *Config) PersistenceEnabled() bool {
	return c.BQProject != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
