// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// CORS (frontend origin)
	AllowedOrigins []string

	// LLM (Groq, OpenAI-compatible chat completions)
	GroqAPIKey    string
	GroqAPIURL    string
	GroqModel     string
	LLMExtraction bool // enable LLM-based field extraction alongside patterns

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Sessions
	SessionTimeout time.Duration
	SweepInterval  time.Duration

	// Credit score cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Storage
	DBPath      string
	SanctionDir string
	UploadDir   string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration
}

// Load reads configuration from environment variables with defaults.
// A local .env file is honored but never overrides the real environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: []string{getEnv("FRONTEND_ORIGIN", "http://localhost:3000")},

		GroqAPIKey:    getEnv("GROQ_API_KEY", ""),
		GroqAPIURL:    getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
		GroqModel:     getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		LLMExtraction: getEnv("LLM_EXTRACTION", "false") == "true",

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 15*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", 30*time.Minute),
		SweepInterval:  getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		// Empty endpoint disables trace export.
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		DBPath:      getEnv("DB_PATH", "data/saarthi.db"),
		SanctionDir: getEnv("SANCTION_DIR", "data/sanctions"),
		UploadDir:   getEnv("UPLOAD_DIR", "data/uploads"),

		JWTSecret:    getEnv("JWT_SECRET", "saarthi-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
