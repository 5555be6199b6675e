package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DB_PATH", "DATABASE_URL", "HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "CURRENCY_SYMBOL"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "business_app.db" || cfg.HTTPAddr != "127.0.0.1:8080" || cfg.LogLevel != "info" || cfg.CurrencySymbol != "Rs." {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadDotEnvAndEnvironmentPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	content := "DB_PATH=data/shop.db\nLOG_LEVEL=debug\nHTTP_ADDR=127.0.0.1:9000\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("HTTP_ADDR", "127.0.0.1:9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "data/shop.db" || cfg.LogLevel != "debug" {
		t.Fatalf("dotenv values not applied: %+v", cfg)
	}
	if cfg.HTTPAddr != "127.0.0.1:9100" {
		t.Fatalf("environment should win, got %q", cfg.HTTPAddr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"level":  {"LOG_LEVEL", "chatty"},
		"format": {"LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := Config{LogLevel: "warn", LogFormat: "json", LogOutput: "stdout"}
	lc := cfg.LoggerConfig()
	if lc.Level != "warn" || lc.Format != "json" || lc.Output != "stdout" {
		t.Fatalf("LoggerConfig = %+v", lc)
	}
}
