package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"warning level", "warning", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"invalid level", "invalid", slog.LevelInfo},
		{"empty string", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbose  int
		quiet    bool
		expected slog.Level
	}{
		{0, false, slog.LevelInfo},
		{1, false, slog.LevelDebug},
		{3, false, slog.LevelDebug},
		{0, true, slog.LevelError},
		{2, true, slog.LevelError},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.verbose, tt.quiet); got != tt.expected {
			t.Errorf("LevelFor(%d, %v) = %v, want %v", tt.verbose, tt.quiet, got, tt.expected)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != slog.LevelInfo {
		t.Errorf("Default level = %v, want %v", cfg.Level, slog.LevelInfo)
	}
	if cfg.Format != "text" {
		t.Errorf("Default Format = %q, want text", cfg.Format)
	}
	if cfg.Console != os.Stderr {
		t.Error("Default Console should be stderr")
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("text console", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer, err := NewLogger(Config{Level: slog.LevelInfo, Format: "text", Console: &buf})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer closer.Close()

		logger.Debug("hidden")
		logger.Info("page written", "name", "getting-started")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug message should be filtered at info level")
		}
		if !strings.Contains(out, "name=getting-started") {
			t.Errorf("text output missing attribute: %q", out)
		}
	})

	t.Run("json console", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer, err := NewLogger(Config{Level: slog.LevelDebug, Format: "JSON", Console: &buf})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer closer.Close()

		logger.Debug("fetch", "url", "https://x.com")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
		}
		if entry["url"] != "https://x.com" {
			t.Errorf("url = %v", entry["url"])
		}
	})

	t.Run("file output", func(t *testing.T) {
		tmpDir := t.TempDir()
		logFile := filepath.Join(tmpDir, "logs", "test.log")

		logger, closer, err := NewLogger(Config{
			Level:      slog.LevelInfo,
			FilePath:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
		})
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.Info("to file")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("log file not created: %v", err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("log file content = %q", string(data))
		}
	})
}

func TestSetDefault(t *testing.T) {
	orig := slog.Default()
	defer slog.SetDefault(orig)

	var buf bytes.Buffer
	closer, err := SetDefault(Config{Level: slog.LevelWarn, Console: &buf})
	if err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	defer closer.Close()

	slog.Info("ignored")
	slog.Warn("kept")

	if strings.Contains(buf.String(), "ignored") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
