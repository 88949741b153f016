// Package log configures the process-wide slog logger and provides
// component-scoped loggers so every record carries where it came from.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Standard component names used across the services.
const (
	ComponentAPI     = "api"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Setup installs a text handler on stdout as the default logger. The level
// string comes from LOG_LEVEL; anything unrecognized means info.
func Setup(level string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ForComponent returns the default logger tagged with a component name.
func ForComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
