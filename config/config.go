// Package config loads application configuration from the environment,
// reading an optional .env file first.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port         string
	DBPath       string
	LogLevel     string
	LogFormat    string // "text" or "json"
	RefundPolicy string // "accept", "clamp" or "reject"
	ScheduleCron string // cron spec for monthly payment generation
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded when present; missing files are fine.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "villa.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		RefundPolicy: getEnv("REFUND_OVER_DEPOSIT", "accept"),
		ScheduleCron: getEnv("SCHEDULE_CRON", "0 6 1 * *"),
	}

	switch cfg.RefundPolicy {
	case "accept", "clamp", "reject":
	default:
		return nil, fmt.Errorf("REFUND_OVER_DEPOSIT must be accept, clamp or reject, got %q", cfg.RefundPolicy)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}
