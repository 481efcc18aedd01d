package monitor

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVRecordOptionalFields(t *testing.T) {
	m := GenerationMetrics{
		Generation:         3,
		AverageAge:         12.5,
		AverageDiscrepancy: 80,
		SurvivorCount:      9,
		OracleAccuracy:     0,
		OracleInteractions: 0,
	}

	rec := m.CSVRecord()
	if len(rec) != len(CSVHeader()) {
		t.Fatalf("record has %d fields, header has %d", len(rec), len(CSVHeader()))
	}
	if rec[0] != "3" {
		t.Errorf("generation field = %q, want \"3\"", rec[0])
	}
	if rec[4] != "" || rec[5] != "" || rec[9] != "" {
		t.Errorf("nil cohesion and z-score must render empty, got %q %q %q", rec[4], rec[5], rec[9])
	}
	if rec[8] != "0" {
		t.Errorf("leap flag = %q, want \"0\"", rec[8])
	}
}

func TestCSVRecordLeapFlag(t *testing.T) {
	z := 2.7
	cohesion := 0.82
	m := GenerationMetrics{
		Generation:   10,
		CohesionMean: &cohesion,
		LeapFlag:     true,
		ZScore:       &z,
	}

	rec := m.CSVRecord()
	if rec[8] != "1" {
		t.Errorf("leap flag = %q, want \"1\"", rec[8])
	}
	if rec[4] != "0.82" {
		t.Errorf("cohesion mean = %q, want \"0.82\"", rec[4])
	}
	if rec[9] != "2.7" {
		t.Errorf("z-score = %q, want \"2.7\"", rec[9])
	}
}

func TestSummaryLoggerAppend(t *testing.T) {
	l := NewSummaryLogger(filepath.Join(t.TempDir(), "summary.csv"))

	if err := l.Append(GenerationMetrics{Generation: 1}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := l.Append(GenerationMetrics{Generation: 2}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	rows := readCSVFile(t, l.Path())
	if len(rows) != 3 {
		t.Fatalf("summary has %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "generation" {
		t.Errorf("header starts with %q, want \"generation\"", rows[0][0])
	}
	if rows[1][0] != "1" || rows[2][0] != "2" {
		t.Errorf("data rows start with %q and %q, want \"1\" and \"2\"", rows[1][0], rows[2][0])
	}
}
