package monitor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nvandessel/evoloop/internal/logging"
)

// DetectorConfig holds tunable parameters for leap detection.
type DetectorConfig struct {
	// Window is the capacity of the rolling baseline of past cohesion
	// means. Default: 20.
	Window int

	// ZMin is the z-score threshold against the rolling baseline.
	// Default: 2.0.
	ZMin float64

	// DeltaMin is the margin a cohesion mean must clear over the best
	// ever seen to count as a record-breaking improvement. Default: 0.08.
	DeltaMin float64

	// AccFloor is the minimum accuracy for a leap to qualify.
	// Default: 0.0 (any accuracy passes).
	AccFloor float64
}

// DefaultDetectorConfig returns the default leap detection configuration.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Window:   20,
		ZMin:     2.0,
		DeltaMin: 0.08,
		AccFloor: 0.0,
	}
}

// LeapEventType tags leap records in the JSONL log and the store.
const LeapEventType = "evolutionary_leap"

// LeapEvent describes one detected evolutionary leap.
type LeapEvent struct {
	Generation   int      `json:"generation"`
	Type         string   `json:"type"`
	Cohesion     float64  `json:"cohesion"`
	Accuracy     *float64 `json:"accuracy"`
	BaselineMean float64  `json:"baseline_mean"`
	BaselineStd  float64  `json:"baseline_std"`
	ZScore       float64  `json:"z_score"`
	Reason       string   `json:"reason"`
}

// LeapDetector flags generations whose cohesion mean is a statistical or
// record-breaking outlier against a rolling baseline of recent generations.
//
// The detector starts cold: until max(5, window/2) prior samples exist it
// only accumulates history and never reports a leap. Once warm it never
// returns to cold. A leap fires when accuracy clears the floor AND either
// the z-score against the baseline passes ZMin or the cohesion beats the
// best ever seen by DeltaMin. The OR deliberately double-counts
// record-breaking-but-statistically-unsurprising generations; early in a
// run the rolling window's variance can mask genuine records.
type LeapDetector struct {
	cfg    DetectorConfig
	window []float64 // oldest first, at most cfg.Window entries
	best   *float64
	sink   *logging.LeapLogger
	logger *slog.Logger
}

// NewLeapDetector creates a detector persisting leap records to sink
// (nil-safe) and reporting persistence failures to logger (may be nil).
func NewLeapDetector(cfg DetectorConfig, sink *logging.LeapLogger, logger *slog.Logger) *LeapDetector {
	return &LeapDetector{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
	}
}

// warmThreshold is the number of prior samples required before the detector
// can form a baseline.
func (d *LeapDetector) warmThreshold() int {
	half := d.cfg.Window / 2
	if half < 5 {
		return 5
	}
	return half
}

// push inserts a cohesion mean into the rolling window, evicting the oldest
// entry when at capacity.
func (d *LeapDetector) push(v float64) {
	if len(d.window) >= d.cfg.Window {
		d.window = d.window[1:]
	}
	d.window = append(d.window, v)
}

// UpdateAndCheck records one generation's cohesion mean and reports whether
// it constitutes a leap. A nil cohesionMean records nothing and never leaps.
// A nil accuracy always passes the accuracy floor. The returned event is
// also appended to the leap log as a side effect.
func (d *LeapDetector) UpdateAndCheck(generation int, cohesionMean, accuracy *float64) *LeapEvent {
	if cohesionMean == nil {
		return nil
	}
	v := *cohesionMean

	// Baseline is the window before this generation's value is inserted.
	recent := make([]float64, len(d.window))
	copy(recent, d.window)
	d.push(v)

	if len(recent) < d.warmThreshold() {
		// Cold: not enough history to form a baseline.
		if d.best == nil || v > *d.best {
			d.best = &v
		}
		return nil
	}

	mu := mean(recent)
	sigma := populationStdDev(recent)
	const eps = 1e-6
	z := (v - mu) / (sigma + eps)

	improvedVsBest := d.best == nil || v >= *d.best+d.cfg.DeltaMin
	zPass := z >= d.cfg.ZMin
	accPass := accuracy == nil || *accuracy >= d.cfg.AccFloor

	isLeap := accPass && (zPass || improvedVsBest)

	if d.best == nil || v > *d.best {
		d.best = &v
	}

	if !isLeap {
		return nil
	}

	var reasons []string
	if zPass {
		reasons = append(reasons, fmt.Sprintf("z=%.2f (>= %.2f)", z, d.cfg.ZMin))
	}
	if improvedVsBest {
		reasons = append(reasons, fmt.Sprintf("best+delta (%.3f vs %.3f/%.3f best)", v, mu, *d.best))
	}

	event := &LeapEvent{
		Generation:   generation,
		Type:         LeapEventType,
		Cohesion:     v,
		Accuracy:     accuracy,
		BaselineMean: mu,
		BaselineStd:  sigma,
		ZScore:       z,
		Reason:       strings.Join(reasons, "; "),
	}

	if err := d.sink.Log(event); err != nil && d.logger != nil {
		d.logger.Warn("failed to log leap", "generation", generation, "error", err)
	}

	return event
}
