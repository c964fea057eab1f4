package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvListenAddr  = "BASESWAP_LISTEN_ADDR"
	EnvFeedBaseURL = "BASESWAP_FEED_BASE_URL"
	EnvHistoryDSN  = "BASESWAP_HISTORY_DSN"
	EnvDebug       = "BASESWAP_DEBUG"
)

// LoadEnv loads environment variables from .env file
func LoadEnv() error {
	return godotenv.Load()
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// applyEnvOverrides lets deploy-time environment variables override the
// file-sourced settings.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvFeedBaseURL); v != "" {
		c.PriceFeed.BaseURL = v
	}
	if v := os.Getenv(EnvHistoryDSN); v != "" {
		c.HistoryDSN = v
	}
	if v := os.Getenv(EnvDebug); v == "1" || v == "true" {
		c.Debug = true
	}
}
