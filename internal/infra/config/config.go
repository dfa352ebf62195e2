package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the dispatch service.
type AppConfig struct {
	DatabaseURL      string
	RedisAddr        string
	HTTPAddr         string
	CronSpecDispatch string        // cron spec for the periodic dispatch run
	DispatchTimeout  time.Duration // bound on one whole dispatch cycle
	PushSendTimeout  time.Duration // bound on a single push endpoint call
	BroadcastChannel string
	SchemaFile       string // optional schema to apply at startup
	LogLevel         string
	Environment      string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "* * * * *" // Default: every minute
	}

	cfg.DispatchTimeout, err = durationFromEnv("DISPATCH_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.PushSendTimeout, err = durationFromEnv("PUSH_SEND_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.BroadcastChannel = os.Getenv("BROADCAST_CHANNEL")
	if cfg.BroadcastChannel == "" {
		cfg.BroadcastChannel = "notifications"
	}

	cfg.SchemaFile = os.Getenv("SCHEMA_FILE") // empty means skip schema apply

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
