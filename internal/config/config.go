package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultModels is the fallback priority ladder used when GEMINI_MODELS is
// not set: best model first, most available last.
var defaultModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
}

// Config holds all configuration for the application.
type Config struct {
	// Server
	Port        string
	Environment string // development, staging, production

	// Database
	DatabaseURL string

	// Gemini
	GeminiAPIKey string
	// Models is the fallback priority list, tried in order until one
	// responds or all are rate limited.
	Models []string
	// GenerateTimeout bounds a single model attempt; zero disables it.
	GenerateTimeout time.Duration
}

// Load reads configuration from environment variables.
// In development, it will also load from a .env file if present.
func Load() (*Config, error) {
	// Load .env file in development (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: mustGetEnv("DATABASE_URL"),

		GeminiAPIKey: mustGetEnv("GEMINI_API_KEY"),
		Models:       splitModels(getEnv("GEMINI_MODELS", "")),
	}

	timeout, err := time.ParseDuration(getEnv("GENERATE_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATE_TIMEOUT: %w", err)
	}
	cfg.GenerateTimeout = timeout

	if len(cfg.Models) == 0 {
		cfg.Models = defaultModels
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// splitModels parses a comma-separated model list, dropping empty entries.
func splitModels(raw string) []string {
	var models []string
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	return models
}

// getEnv returns the value of an environment variable or a fallback default.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// mustGetEnv returns the value of an environment variable or panics if not set.
func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}
