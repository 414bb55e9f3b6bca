// Package logging provides structured logging configuration using log/slog
// and the Observer the pipeline reports its events through.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelCritical sits above slog.LevelError and is reserved for failures that
// leave the run without a report.
const LevelCritical = slog.Level(12)

// Options describes where and how to log.
type Options struct {
	// Level is "debug", "info", "warn" or "error" (default "info").
	Level string

	// Format is "text" or "json" (default "text").
	Format string

	// File, when set, receives a copy of every record.
	File string

	// Stdout is the console writer. Defaults to os.Stdout.
	Stdout io.Writer
}

// Setup builds a logger that writes to the console and, when opts.File is
// set, to that file as well. The returned close function releases the file.
//
// Use "json" format when the log file is shipped somewhere for parsing.
// Use "text" format for people reading the console.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	var out io.Writer = os.Stdout
	if opts.Stdout != nil {
		out = opts.Stdout
	}

	closeFn := func() error { return nil }

	if opts.File != "" {
		file, err := openLogFile(opts.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, file)
		closeFn = file.Close
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: replaceLevelName,
	}

	var handler slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(handler), closeFn, nil
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// replaceLevelName prints LevelCritical as "CRITICAL" instead of "ERROR+4".
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelCritical + 1}))
}

// critical logs at LevelCritical.
func critical(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelCritical, msg, args...)
}
