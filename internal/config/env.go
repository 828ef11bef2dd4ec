package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override values from the config file
const (
	EnvBaseURL    = "KISMET_BASE_URL"
	EnvPort       = "KISMET_PORT"
	EnvRedisURL   = "REDIS_URL"
	EnvNgrokToken = "NGROK_AUTHTOKEN"
	EnvLogLevel   = "LOG_LEVEL"
)

// ApplyEnv loads .env (if present) and lets the process environment override
// deployment specific settings. Variables already set in the environment win
// over the ones in .env.
func (c *Config) ApplyEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvNgrokToken); v != "" && c.Ngrok.AuthToken == "" {
		c.Ngrok.AuthToken = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	return nil
}
