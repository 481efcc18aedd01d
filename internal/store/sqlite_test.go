package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nvandessel/evoloop/internal/monitor"
)

func newTestStore(t *testing.T) *ExperimentStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "evoloop.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func f(v float64) *float64 { return &v }

func TestRecordAndReadHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, 42, 100, 2, 50)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	first := monitor.GenerationMetrics{
		Generation:         1,
		AverageAge:         10.5,
		AverageDiscrepancy: 120,
		SurvivorCount:      90,
		CohesionMean:       f(0.6),
		CohesionMedian:     f(0.65),
		OracleAccuracy:     0.4,
		OracleInteractions: 33,
	}
	second := monitor.GenerationMetrics{
		Generation:         2,
		SurvivorCount:      85,
		LeapFlag:           true,
		ZScore:             f(2.5),
	}
	if err := run.RecordGeneration(ctx, first); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}
	if err := run.RecordGeneration(ctx, second); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}

	history, err := s.RunHistory(ctx, run.ID())
	if err != nil {
		t.Fatalf("RunHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}

	got := history[0]
	if got.Generation != 1 || got.SurvivorCount != 90 || got.OracleInteractions != 33 {
		t.Errorf("first generation = %+v", got)
	}
	if got.CohesionMean == nil || *got.CohesionMean != 0.6 {
		t.Errorf("cohesion mean = %v, want 0.6", got.CohesionMean)
	}
	if got.ZScore != nil {
		t.Errorf("z-score = %v, want nil", got.ZScore)
	}

	got = history[1]
	if !got.LeapFlag {
		t.Error("second generation should carry the leap flag")
	}
	if got.CohesionMean != nil {
		t.Errorf("cohesion mean = %v, want nil round trip", got.CohesionMean)
	}
	if got.ZScore == nil || *got.ZScore != 2.5 {
		t.Errorf("z-score = %v, want 2.5", got.ZScore)
	}
}

func TestRecordAndReadLeaps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, 1, 10, 2, 5)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	ev := monitor.LeapEvent{
		Generation:   14,
		Type:         monitor.LeapEventType,
		Cohesion:     0.9,
		Accuracy:     f(0.7),
		BaselineMean: 0.5,
		BaselineStd:  0.1,
		ZScore:       4.0,
		Reason:       "z=4.00 (>= 2.00)",
	}
	if err := run.RecordLeap(ctx, ev); err != nil {
		t.Fatalf("RecordLeap: %v", err)
	}

	leaps, err := s.Leaps(ctx, run.ID())
	if err != nil {
		t.Fatalf("Leaps: %v", err)
	}
	if len(leaps) != 1 {
		t.Fatalf("leaps length = %d, want 1", len(leaps))
	}
	got := leaps[0]
	if got.Generation != 14 || got.Cohesion != 0.9 || got.ZScore != 4.0 {
		t.Errorf("leap = %+v", got)
	}
	if got.Type != monitor.LeapEventType {
		t.Errorf("leap type = %q, want %q", got.Type, monitor.LeapEventType)
	}
	if got.Accuracy == nil || *got.Accuracy != 0.7 {
		t.Errorf("accuracy = %v, want 0.7", got.Accuracy)
	}
	if got.Reason != ev.Reason {
		t.Errorf("reason = %q, want %q", got.Reason, ev.Reason)
	}
}

func TestListRunsAndLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestRunID(ctx); err == nil {
		t.Error("LatestRunID on empty store should fail")
	}

	first, err := s.BeginRun(ctx, 1, 10, 2, 5)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	second, err := s.BeginRun(ctx, 2, 20, 3, 7)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := second.RecordGeneration(ctx, monitor.GenerationMetrics{Generation: 1}); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}

	latest, err := s.LatestRunID(ctx)
	if err != nil {
		t.Fatalf("LatestRunID: %v", err)
	}
	if latest != second.ID() {
		t.Errorf("latest run = %d, want %d", latest, second.ID())
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ID != second.ID() || runs[1].ID != first.ID() {
		t.Errorf("run order = [%d, %d], want newest first", runs[0].ID, runs[1].ID)
	}
	if runs[0].Recorded != 1 {
		t.Errorf("recorded generations = %d, want 1", runs[0].Recorded)
	}
	if runs[0].PopulationSize != 20 || runs[0].GenomeSize != 3 || runs[0].Generations != 7 {
		t.Errorf("run params = %+v", runs[0])
	}
}

func TestHistoryEmptyRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, 1, 10, 2, 5)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	history, err := s.RunHistory(ctx, run.ID())
	if err != nil {
		t.Fatalf("RunHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length = %d, want 0", len(history))
	}
}
