package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// JSON collection store
	DataDir string

	// Slot persistence backend: "json" (default) or "postgres"
	SlotStore   string
	DatabaseURL string

	// Judgment oracle (OpenAI)
	OpenAIEnabled bool
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Scheduling policy
	RoutineWindowDays int

	// Risk preview cache
	RedisAddr     string
	RedisPassword string
	RiskCacheTTL  time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir: getEnv("DATA_DIR", "data"),

		SlotStore:   strings.ToLower(strings.TrimSpace(getEnv("SLOT_STORE", "json"))),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		OpenAIEnabled: getEnvAsBool("OPENAI_ENABLED", true),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout: getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),

		RoutineWindowDays: getEnvAsInt("ROUTINE_WINDOW_DAYS", 30),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RiskCacheTTL:  getEnvAsDuration("RISK_CACHE_TTL", 5*time.Minute),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
