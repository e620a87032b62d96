package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"  WARN ", slog.LevelWarn},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewForDirWritesLogFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewForDir(dir, "info", "console")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("session started", String(FieldSession, "abc"))

	content, err := os.ReadFile(filepath.Join(dir, "podium.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "session started") {
		t.Fatalf("expected message in log output, got %q", line)
	}
	if !strings.Contains(line, "session_id=abc") {
		t.Fatalf("expected session field in log output, got %q", line)
	}
}

func TestConsoleHandlerComponentPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	NewComponentLogger(logger, "ws").Info("connected")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "[ws] connected") {
		t.Fatalf("expected component prefix, got %q", content)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("note", String("detail", "two words"))

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `detail="two words"`) {
		t.Fatalf("expected quoted value, got %q", content)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("shown")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") {
		t.Fatalf("expected debug record filtered, got %q", content)
	}
	if !strings.Contains(string(content), "shown") {
		t.Fatalf("expected info record written, got %q", content)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected nop logger to be disabled")
	}
}
