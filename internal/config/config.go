package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Padding pass
	Workers int

	// Rules file used instead of the mdBook context (render/serve)
	RulesFile string

	// Logging
	LogLevel slog.Level

	// HTTP service
	Port           string
	APIKey         string
	MaxBodyBytes   int64
	MaxConnections int
	RequestTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		Workers: envInt("PAD_WORKERS", runtime.GOMAXPROCS(0)),

		RulesFile: os.Getenv("PAD_RULES_FILE"),

		LogLevel: envLevel("PAD_LOG_LEVEL", slog.LevelWarn),

		Port:           envOr("PAD_PORT", "8091"),
		APIKey:         os.Getenv("PAD_API_KEY"),
		MaxBodyBytes:   envInt64("PAD_MAX_BODY_BYTES", 33554432), // 32MB
		MaxConnections: envInt("PAD_MAX_CONNECTIONS", 64),
		RequestTimeout: envDuration("PAD_REQUEST_TIMEOUT", 30*time.Second),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 33554432
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 64
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PAD_PORT must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PAD_PORT must be numeric, got %q", c.Port)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.TrimSpace(v))); err == nil {
			return lvl
		}
	}
	return fallback
}
