package config

import (
	"os"
	"strconv"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is read once from the environment (a .env file is loaded by the CLI
// before this runs).
type Config struct {
	Port     string
	DBDriver string
	DBDSN    string

	// Capture timings; zero values fall back to the session defaults.
	CaptureRetryDelay time.Duration
	CaptureCloseDelay time.Duration
	CaptureMaxRetries int
}

// Load reads the environment with local-dev defaults: a sqlite file next to
// the binary and port 8080.
func Load() *Config {
	cfg := &Config{
		Port:     getenv("PORT", "8080"),
		DBDriver: getenv("DB_DRIVER", DriverSQLite),
		DBDSN:    os.Getenv("DB_DSN"),
	}
	if cfg.DBDSN == "" {
		if cfg.DBDriver == DriverSQLite {
			cfg.DBDSN = "applytrack.sqlite"
		} else {
			cfg.DBDSN = "host=localhost user=postgres password=password dbname=applytrack port=5432 sslmode=disable"
		}
	}
	if v := os.Getenv("CAPTURE_RETRY_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.CaptureRetryDelay = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("CAPTURE_CLOSE_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.CaptureCloseDelay = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("CAPTURE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CaptureMaxRetries = n
		}
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
