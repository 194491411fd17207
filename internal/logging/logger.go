// Package logging configures the process-wide slog logger from the command
// line verbosity flags and the log settings in skills.yaml.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the logging configuration
type Config struct {
	Level      slog.Level
	Format     string // "text" or "json"
	AddSource  bool
	FilePath   string
	MaxSize    int64 // MB
	MaxBackups int
	Console    io.Writer
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		Format:     "text",
		MaxSize:    100,
		MaxBackups: 5,
		Console:    os.Stderr,
	}
}

// LevelFor maps the -v count and -q flag to a level. Quiet wins.
func LevelFor(verbose int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose >= 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new logger with the given configuration. The returned
// closer releases the log file, if any.
func NewLogger(config Config) (*slog.Logger, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if config.Console != nil {
		writers = append(writers, config.Console)
	}

	// File output with rotation
	if config.FilePath != "" {
		dir := filepath.Dir(config.FilePath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, err
		}

		maxSize := config.MaxSize
		if maxSize <= 0 {
			maxSize = 100
		}
		fileWriter, err := NewRotatingFileWriter(config.FilePath, maxSize*1024*1024, config.MaxBackups)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	var writer io.Writer
	if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "json") {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler), closer, nil
}

// SetDefault creates and sets a default logger with the given configuration
func SetDefault(config Config) (io.Closer, error) {
	logger, closer, err := NewLogger(config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
