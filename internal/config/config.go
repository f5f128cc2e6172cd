package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Env  string
	Port string
	Mode string

	// DatabaseURL is a SQLite file path or a postgres:// URL
	DatabaseURL string

	// APIBaseURL points at the remote Todo API. Empty means local-only todos.
	APIBaseURL    string
	RemoteTimeout time.Duration

	// SyncURL is the Redis URL used for the change feed. Empty disables it.
	SyncURL string

	// RedisURL backs the asynq worker. Empty disables the worker.
	RedisURL        string
	MetricsSchedule string
	MetricsTimezone string

	SeedDemoData  bool
	DemoUserEmail string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after loading a .env file if present
func Load() *Config {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	env := getEnvWithDefault("ENV", "development")
	cfg := &Config{
		Env:             env,
		Port:            getEnvWithDefault("PORT", "8080"),
		Mode:            getEnvWithDefault("MODE", "server"),
		DatabaseURL:     getEnvWithDefault("DATABASE_URL", "vendor_app.db"),
		APIBaseURL:      os.Getenv("API_BASE_URL"),
		RemoteTimeout:   getDurationWithDefault("REMOTE_TIMEOUT", 10*time.Second),
		SyncURL:         os.Getenv("SYNC_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		MetricsSchedule: getEnvWithDefault("METRICS_SCHEDULE", "@hourly"),
		MetricsTimezone: getEnvWithDefault("METRICS_TIMEZONE", "UTC"),
		SeedDemoData:    getBoolWithDefault("SEED_DEMO_DATA", env == "development"),
		DemoUserEmail:   getEnvWithDefault("DEMO_USER_EMAIL", "vendor@demo.local"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvWithDefault("LOG_FORMAT", "text"),
	}

	if cfg.APIBaseURL == "" {
		slog.Info("API_BASE_URL not set, todos stay local-only")
	}
	if cfg.SyncURL == "" {
		slog.Info("SYNC_URL not set, change feed disabled")
	}

	return cfg
}

// WorkerEnabled reports whether a Redis connection for asynq is configured
func (c *Config) WorkerEnabled() bool {
	return c.RedisURL != ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Invalid boolean, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return b
}
