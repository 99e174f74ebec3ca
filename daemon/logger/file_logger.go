package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLoggerConfig holds configuration for file-based logging
type FileLoggerConfig struct {
	Filename   string `json:"filename"`
	MaxSize    int    `json:"max_size"`    // megabytes
	MaxBackups int    `json:"max_backups"` // number of backup files
	MaxAge     int    `json:"max_age"`     // days
	Compress   bool   `json:"compress"`    // compress backup files
}

// DefaultFileLoggerConfig returns a conservative rotation policy suitable
// for an agent running unattended on an edge or headless node.
func DefaultFileLoggerConfig(logsDir string) FileLoggerConfig {
	return FileLoggerConfig{
		Filename:   filepath.Join(logsDir, "all-smi-agent.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
}

// SetupFileLogger points the agent's structured logger (daemon/logger's
// zerolog-backed Logger, not the stdlib "log" package) at a rotating file
// alongside stdout, so every Info/Warn/LogScrapeRequest/... call lands in
// both places.
func SetupFileLogger(config FileLoggerConfig) error {
	logDir := filepath.Dir(config.Filename)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	fileLogger := &lumberjack.Logger{
		Filename:   config.Filename,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	SetStructuredLogger(io.MultiWriter(os.Stdout, fileLogger), zerolog.InfoLevel)
	Logger.Info().Str("file", config.Filename).Msg("file logging configured")

	return nil
}
