// Package logging installs the process-wide slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var levelVar slog.LevelVar

// Setup installs a text or JSON handler writing to w as the slog default.
// PRE: format is "text" or "json"
// POST: slog.Default() logs at level; SetLevelString adjusts it later
func Setup(w io.Writer, level, format string) (*slog.Logger, error) {
	if err := SetLevelString(level); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: &levelVar}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "", "info":
		levelVar.Set(slog.LevelInfo)
	case "warn", "warning":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// Level returns the active level.
func Level() slog.Level {
	return levelVar.Level()
}
