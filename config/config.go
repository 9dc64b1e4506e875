// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	ServerPort      int
	DatabasePath    string
	LogLevel        string
	LogFormat       string // "json" or "console"
	DispenseTimeout time.Duration
	ResetHour       int // local hour of day for the daily taken-today reset
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is applied first when
// present; missing .env is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnvInt("PORT", 8080),
		DatabasePath:    getEnv("DB_PATH", "./dispenser.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		DispenseTimeout: getEnvDuration("DISPENSE_TIMEOUT", 10*time.Second),
		ResetHour:       getEnvInt("RESET_HOUR", 0),
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
