// Package logging provides leveled logging and leap-event persistence for
// evoloop. It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A LeapLogger for structured JSONL leap records (leaps.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LevelTrace is a custom slog level below Debug for full per-cycle logging.
// At this level, individual oracle interactions and organism state are included.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LeapLogger writes leap records to an append-only JSONL file, one JSON
// object per line. It is safe for concurrent use. A nil LeapLogger is safe
// to use; all methods are no-ops on nil receiver.
type LeapLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewLeapLogger creates a leap logger appending to path, creating parent
// directories as needed. Returns nil if the file cannot be opened; all
// methods are nil-safe, so leap persistence degrades to a no-op.
func NewLeapLogger(path string) *LeapLogger {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}

	return &LeapLogger{file: f}
}

// Log writes one event as a single JSONL line. Write failures are returned
// so the caller can report them; they are never fatal. Safe to call on nil
// receiver.
func (ll *LeapLogger) Log(event any) error {
	if ll == nil || ll.file == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	ll.mu.Lock()
	defer ll.mu.Unlock()

	_, err = ll.file.Write(data)
	return err
}

// Close closes the underlying file. Safe to call on nil receiver.
func (ll *LeapLogger) Close() {
	if ll == nil || ll.file == nil {
		return
	}

	ll.mu.Lock()
	defer ll.mu.Unlock()

	ll.file.Close()
	ll.file = nil
}
