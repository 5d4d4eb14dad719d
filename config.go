package lishp

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Config holds the process settings, read from LISHP_* environment
// variables.
type Config struct {
	SockPath    string // LISHP_SOCK
	Dir         string // LISHP_DIR
	HistoryPath string // LISHP_HISTORY_DB
	HTTPAddr    string // LISHP_HTTP_ADDR, empty disables HTTP
	LogLevel    string // LISHP_LOG_LEVEL
}

// ConfigFromEnv reads the LISHP_* variables, filling in defaults.
func ConfigFromEnv() Config {
	dir := envOr("LISHP_DIR", ".")
	return Config{
		SockPath:    envOr("LISHP_SOCK", "/tmp/lishp.sock"),
		Dir:         dir,
		HistoryPath: envOr("LISHP_HISTORY_DB", filepath.Join(dir, "history.db")),
		HTTPAddr:    os.Getenv("LISHP_HTTP_ADDR"),
		LogLevel:    envOr("LISHP_LOG_LEVEL", "info"),
	}
}

// SetupLogging applies the configured level to the standard logrus logger.
func (c Config) SetupLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
