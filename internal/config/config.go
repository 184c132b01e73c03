package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB      DatabaseConfig
	Redis   RedisConfig
	Adapter AdapterConfig
	Worker  WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AdapterConfig contains settings shared by all platform adapters.
type AdapterConfig struct {
	// Timeout bounds one adapter's contribution to a search; a slow
	// platform is treated as failed once exceeded.
	Timeout time.Duration
	// MaxAttempts is the outbound retry budget per request.
	MaxAttempts int
	// RequestsPerSecond throttles outbound calls per platform. Zero
	// disables throttling.
	RequestsPerSecond float64
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	PriceSyncInterval    time.Duration
	PriceSyncConcurrency int
	PriceStaleAfter      time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Adapters
	var err error
	if cfg.Adapter.Timeout, err = parseDurationEnv("ADAPTER_TIMEOUT", "4s"); err != nil {
		return nil, fmt.Errorf("invalid ADAPTER_TIMEOUT: %w", err)
	}
	cfg.Adapter.MaxAttempts = getEnvInt("ADAPTER_MAX_ATTEMPTS", 3)
	cfg.Adapter.RequestsPerSecond = getEnvFloat("ADAPTER_REQUESTS_PER_SECOND", 5)

	// Workers (durations)
	if cfg.Worker.PriceSyncInterval, err = parseDurationEnv("PRICE_SYNC_INTERVAL", "15m"); err != nil {
		return nil, fmt.Errorf("invalid PRICE_SYNC_INTERVAL: %w", err)
	}
	if cfg.Worker.PriceStaleAfter, err = parseDurationEnv("PRICE_STALE_AFTER", "1h"); err != nil {
		return nil, fmt.Errorf("invalid PRICE_STALE_AFTER: %w", err)
	}
	cfg.Worker.PriceSyncConcurrency = getEnvInt("PRICE_SYNC_CONCURRENCY", 4)

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
