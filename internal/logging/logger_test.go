package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf)

	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message leaked at info level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("info message missing")
	}
}

func TestNewLoggerTraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)

	logger.Log(context.Background(), LevelTrace, "deep detail")

	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("trace output = %q, want TRACE label", buf.String())
	}
}

func TestLeapLoggerWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "leaps.jsonl")
	ll := NewLeapLogger(path)
	if ll == nil {
		t.Fatal("NewLeapLogger returned nil")
	}
	defer ll.Close()

	if err := ll.Log(map[string]any{"generation": 1}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := ll.Log(map[string]any{"generation": 2}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for i, line := range lines {
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Errorf("line %d not valid JSON: %v", i, err)
		}
	}
}

func TestLeapLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaps.jsonl")

	first := NewLeapLogger(path)
	first.Log(map[string]any{"generation": 1})
	first.Close()

	second := NewLeapLogger(path)
	second.Log(map[string]any{"generation": 2})
	second.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("lines = %d, want 2 (append across sessions)", got)
	}
}

func TestLeapLoggerNilSafe(t *testing.T) {
	var ll *LeapLogger

	if err := ll.Log(map[string]any{"x": 1}); err != nil {
		t.Errorf("nil logger Log returned %v, want nil", err)
	}
	ll.Close()
}
