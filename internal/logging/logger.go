// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the structured logger used across devcli.
//
// The TUI owns the terminal, so interactive runs log to a file
// (~/.devcli/devcli.log by default). DEVCLI_DEBUG_FILE and DEVCLI_DEBUG_LEVEL
// override the path and level.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvDebugFile overrides the log file path.
	EnvDebugFile = "DEVCLI_DEBUG_FILE"
	// EnvDebugLevel overrides the log level (debug, info, warn, error).
	EnvDebugLevel = "DEVCLI_DEBUG_LEVEL"
)

// Logger is the logging interface handed to components.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	SetLevel(level slog.Level)
}

// Format is the record encoding.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Format  Format
	Output  io.Writer
	AddTime bool
}

type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// New creates a logger from cfg. A nil Output means stderr.
func New(cfg Config) Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	if !cfg.AddTime {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return &slogLogger{logger: slog.New(handler), level: level}
}

// NewStderr returns a timestamp-free text logger on stderr for
// non-interactive subcommands.
func NewStderr(verbose bool) Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return New(Config{Level: level, Format: FormatText, Output: os.Stderr})
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() Logger {
	return New(Config{Level: slog.Level(1000), Output: io.Discard})
}

// ParseLevel parses debug, info, warn/warning and error. Anything else
// yields fallback.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// FilePath returns DEVCLI_DEBUG_FILE when set, otherwise defaultPath.
func FilePath(defaultPath string) string {
	if p := os.Getenv(EnvDebugFile); p != "" {
		return p
	}
	return defaultPath
}

// OpenFile creates a text logger appending to path, honouring the
// environment overrides. verbose lowers the default level from info to
// debug. The returned closer releases the file.
func OpenFile(defaultPath string, verbose bool) (Logger, io.Closer, error) {
	fallback := slog.LevelInfo
	if verbose {
		fallback = slog.LevelDebug
	}
	level := ParseLevel(os.Getenv(EnvDebugLevel), fallback)
	path := FilePath(defaultPath)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return Discard(), io.NopCloser(nil), fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return Discard(), io.NopCloser(nil), fmt.Errorf("open log file: %w", err)
	}
	return New(Config{Level: level, Format: FormatText, Output: f, AddTime: true}), f, nil
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// With returns a child logger sharing the parent's level.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...), level: l.level}
}

// SetLevel changes the level of this logger and every logger derived from it.
func (l *slogLogger) SetLevel(level slog.Level) {
	l.level.Set(level)
}
