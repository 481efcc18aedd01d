package monitor

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// SummaryLogger appends one row per generation to the generation-summary
// CSV. The header is written once when the destination is newly created or
// empty; subsequent runs append without rewriting it.
type SummaryLogger struct {
	path string
}

// NewSummaryLogger creates a summary logger for path. The file is not
// touched until the first append.
func NewSummaryLogger(path string) *SummaryLogger {
	return &SummaryLogger{path: path}
}

// Path returns the destination file path.
func (l *SummaryLogger) Path() string {
	return l.path
}

// Append writes one generation row, creating the file and header first if
// needed. Failures are returned for reporting but the caller's simulation
// state is unaffected.
func (l *SummaryLogger) Append(m GenerationMetrics) error {
	if err := l.ensureHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening summary log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(m.CSVRecord()); err != nil {
		return fmt.Errorf("writing summary row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing summary row: %w", err)
	}
	return nil
}

// ensureHeader writes the CSV header when the file is missing or empty.
func (l *SummaryLogger) ensureHeader() error {
	if info, err := os.Stat(l.path); err == nil && info.Size() > 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating summary log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating summary log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader()); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	w.Flush()
	return w.Error()
}
