package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the process-wide configuration. It is read once at startup
// and never mutated afterwards; gateways receive the values they need
// through their constructors.
type Config struct {
	Port             string
	DatabaseURL      string
	GeminiAPIKey     string
	GeminiModel      string
	CatalogBaseURL   string
	ReasoningTimeout time.Duration
	CatalogTimeout   time.Duration
}

// AppConfig holds the application-wide configuration.
var AppConfig Config

// Load reads configuration from the environment, applying defaults for
// everything but the API key.
func Load() Config {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		CatalogBaseURL:   getEnv("CATALOG_BASE_URL", "http://localhost:3000"),
		ReasoningTimeout: getEnvSeconds("REASONING_TIMEOUT_SECONDS", 30),
		CatalogTimeout:   getEnvSeconds("CATALOG_TIMEOUT_SECONDS", 15),
	}
	AppConfig = cfg
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}
