package monitor

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/evoloop/internal/logging"
)

func f(v float64) *float64 { return &v }

func TestDetectorColdStart(t *testing.T) {
	d := NewLeapDetector(DefaultDetectorConfig(), nil, nil)

	// Warm threshold is max(5, 20/2) = 10 prior samples. Even a huge
	// outlier before that must not leap.
	values := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 9.9}
	for i, v := range values {
		if ev := d.UpdateAndCheck(i+1, f(v), nil); ev != nil {
			t.Fatalf("generation %d leaped during cold start: %+v", i+1, ev)
		}
	}
}

func TestDetectorStatisticalLeap(t *testing.T) {
	d := NewLeapDetector(DefaultDetectorConfig(), nil, nil)

	for i := 0; i < 12; i++ {
		if ev := d.UpdateAndCheck(i+1, f(0.5), nil); ev != nil {
			t.Fatalf("constant series leaped at generation %d", i+1)
		}
	}

	ev := d.UpdateAndCheck(13, f(0.9), nil)
	if ev == nil {
		t.Fatal("outlier after a flat baseline must leap")
	}
	if ev.Generation != 13 {
		t.Errorf("generation = %d, want 13", ev.Generation)
	}
	if ev.Cohesion != 0.9 {
		t.Errorf("cohesion = %f, want 0.9", ev.Cohesion)
	}
	if ev.BaselineMean != 0.5 {
		t.Errorf("baseline mean = %f, want 0.5", ev.BaselineMean)
	}
	if ev.ZScore < 2.0 {
		t.Errorf("z-score = %f, want >= 2.0", ev.ZScore)
	}
	if !strings.Contains(ev.Reason, "z=") {
		t.Errorf("reason = %q, want a z-score clause", ev.Reason)
	}
	if ev.Type != LeapEventType {
		t.Errorf("type = %q, want %q", ev.Type, LeapEventType)
	}
}

func TestDetectorBestDeltaLeap(t *testing.T) {
	d := NewLeapDetector(DefaultDetectorConfig(), nil, nil)

	// Noisy alternating baseline: mean 0.5, stddev 0.5, best 1.0.
	for i := 0; i < 12; i++ {
		v := 0.0
		if i%2 == 1 {
			v = 1.0
		}
		d.UpdateAndCheck(i+1, f(v), nil)
	}

	// z = (1.2-0.5)/0.5 = 1.4 < 2, but 1.2 >= best + 0.08.
	ev := d.UpdateAndCheck(13, f(1.2), nil)
	if ev == nil {
		t.Fatal("record-breaking value must leap even with a modest z-score")
	}
	if ev.ZScore >= 2.0 {
		t.Fatalf("z-score = %f, expected below the statistical threshold", ev.ZScore)
	}
	if !strings.Contains(ev.Reason, "best+delta") {
		t.Errorf("reason = %q, want a best+delta clause", ev.Reason)
	}
}

func TestDetectorAccuracyFloor(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.AccFloor = 0.5
	d := NewLeapDetector(cfg, nil, nil)

	for i := 0; i < 12; i++ {
		d.UpdateAndCheck(i+1, f(0.5), f(0.6))
	}

	if ev := d.UpdateAndCheck(13, f(0.9), f(0.2)); ev != nil {
		t.Error("accuracy below the floor must veto the leap")
	}
	// Nil accuracy always passes the floor.
	if ev := d.UpdateAndCheck(14, f(1.5), nil); ev == nil {
		t.Error("nil accuracy must not veto an outlier")
	}
}

func TestDetectorNilCohesion(t *testing.T) {
	d := NewLeapDetector(DefaultDetectorConfig(), nil, nil)

	for i := 0; i < 12; i++ {
		d.UpdateAndCheck(i+1, f(0.5), nil)
	}
	if ev := d.UpdateAndCheck(13, nil, nil); ev != nil {
		t.Error("nil cohesion must never leap")
	}
	if got := len(d.window); got != 12 {
		t.Errorf("window length = %d, want 12; nil samples must not be recorded", got)
	}
}

func TestDetectorWindowEviction(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.Window = 20
	d := NewLeapDetector(cfg, nil, nil)

	for i := 0; i < 50; i++ {
		d.UpdateAndCheck(i+1, f(0.5), nil)
	}
	if got := len(d.window); got != 20 {
		t.Errorf("window length = %d, want capped at 20", got)
	}
}

func TestDetectorPersistsLeaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaps.jsonl")
	sink := logging.NewLeapLogger(path)
	if sink == nil {
		t.Fatal("failed to create leap logger")
	}
	defer sink.Close()

	d := NewLeapDetector(DefaultDetectorConfig(), sink, nil)
	for i := 0; i < 12; i++ {
		d.UpdateAndCheck(i+1, f(0.5), nil)
	}
	if ev := d.UpdateAndCheck(13, f(0.9), f(0.8)); ev == nil {
		t.Fatal("expected a leap")
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open leap log: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var lines int
	for scanner.Scan() {
		lines++
		var ev LeapEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("invalid JSONL line: %v", err)
		}
		if ev.Type != LeapEventType {
			t.Errorf("persisted type = %q, want %q", ev.Type, LeapEventType)
		}
		if ev.Generation != 13 {
			t.Errorf("persisted generation = %d, want 13", ev.Generation)
		}
		if ev.Accuracy == nil || *ev.Accuracy != 0.8 {
			t.Errorf("persisted accuracy = %v, want 0.8", ev.Accuracy)
		}
	}
	if lines != 1 {
		t.Errorf("leap log has %d lines, want 1", lines)
	}
}
