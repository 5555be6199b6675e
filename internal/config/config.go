package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"billing/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath         string
	DatabaseURL    string
	HTTPAddr       string
	LogLevel       string
	LogFormat      string
	LogOutput      string
	CurrencySymbol string
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Load reads .env from the working directory when present; process environment wins.
func Load() (Config, error) {
	envPath := filepath.Join(".", ".env")

	values := map[string]string{}
	fileValues, err := godotenv.Read(envPath)
	switch {
	case err == nil:
		values = fileValues
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", envPath, err)
	}

	get := func(key, fallback string) string {
		if value := firstNonEmpty(os.Getenv(key), values[key]); value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBPath:         get("DB_PATH", "business_app.db"),
		DatabaseURL:    get("DATABASE_URL", ""),
		HTTPAddr:       get("HTTP_ADDR", "127.0.0.1:8080"),
		LogLevel:       strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(get("LOG_FORMAT", "console")),
		LogOutput:      get("LOG_OUTPUT", "stderr"),
		CurrencySymbol: get("CURRENCY_SYMBOL", "Rs."),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" && c.DBPath == "" {
		return fmt.Errorf("DB_PATH or DATABASE_URL is required")
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid LOG_FORMAT: %q (want console or json)", c.LogFormat)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR cannot be empty")
	}
	return nil
}

func (c Config) LoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: time.RFC3339,
		Output:     c.LogOutput,
	}
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
