package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full server configuration, loaded from the environment
type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	Store       StoreConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
}

// StoreConfig selects and parameterizes the document store backend
type StoreConfig struct {
	// Backend is "file" or "postgres"
	Backend string
	// DataDir holds the per-network JSON documents for the file backend
	DataDir string
}

// CacheConfig selects the network-document read cache
type CacheConfig struct {
	// Backend is "redis", "local" or "none"
	Backend string
	TTL     time.Duration
}

// RateLimitConfig parameterizes the per-IP limiter (requires Redis)
type RateLimitConfig struct {
	Enabled   bool
	PerSecond int
}

// LoggingConfig parameterizes structured logging
type LoggingConfig struct {
	Level       string
	FileEnabled bool
	FilePath    string
}

// Load reads configuration from environment variables with sane defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("API_PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "file"),
			DataDir: getEnv("STORE_DATA_DIR", "data/networks"),
		},
		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "local"),
			TTL:     getDurationEnv("CACHE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getBoolEnv("RATE_LIMIT_ENABLED", false),
			PerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 20),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			FileEnabled: getBoolEnv("LOG_FILE_ENABLED", false),
			FilePath:    getEnv("LOG_FILE", "trainbuilder.log"),
		},
	}
}

// Development reports whether the server runs in development mode
func (c *Config) Development() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
