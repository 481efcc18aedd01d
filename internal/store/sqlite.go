// Package store persists experiment runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/evoloop/internal/monitor"
)

// ExperimentStore records runs, their per-generation metrics, and leap
// events in a SQLite database. One row in runs per invocation; generations
// and leaps reference it.
type ExperimentStore struct {
	db     *sql.DB
	dbPath string
}

// RunInfo describes one recorded run.
type RunInfo struct {
	ID             int64     `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	Seed           uint64    `json:"seed"`
	PopulationSize int       `json:"population_size"`
	GenomeSize     int       `json:"genome_size"`
	Generations    int       `json:"generations"`
	Recorded       int       `json:"recorded_generations"`
	Leaps          int       `json:"leaps"`
}

// Open opens (creating if needed) the experiment store at dbPath.
func Open(dbPath string) (*ExperimentStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &ExperimentStore{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *ExperimentStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *ExperimentStore) Path() string {
	return s.dbPath
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		population_size INTEGER NOT NULL,
		genome_size INTEGER NOT NULL,
		generations INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS generations (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		generation INTEGER NOT NULL,
		average_age REAL NOT NULL,
		average_discrepancy REAL NOT NULL,
		survivor_count INTEGER NOT NULL,
		cohesion_mean REAL,
		cohesion_median REAL,
		oracle_accuracy REAL NOT NULL,
		oracle_interactions INTEGER NOT NULL,
		leap_flag INTEGER NOT NULL,
		z_score REAL,
		PRIMARY KEY (run_id, generation)
	);

	CREATE TABLE IF NOT EXISTS leaps (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		generation INTEGER NOT NULL,
		cohesion REAL NOT NULL,
		accuracy REAL,
		baseline_mean REAL NOT NULL,
		baseline_std REAL NOT NULL,
		z_score REAL NOT NULL,
		reason TEXT NOT NULL,
		PRIMARY KEY (run_id, generation)
	);

	CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id);
	CREATE INDEX IF NOT EXISTS idx_leaps_run ON leaps(run_id);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return nil
}

// BeginRun registers a new run and returns its recording handle.
func (s *ExperimentStore) BeginRun(ctx context.Context, seed uint64, populationSize, genomeSize, generations int) (*Run, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, seed, population_size, genome_size, generations)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), seed, populationSize, genomeSize, generations)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read run id: %w", err)
	}
	return &Run{store: s, id: id}, nil
}

// Run records one experiment run. It implements evolution.Recorder.
type Run struct {
	store *ExperimentStore
	id    int64
}

// ID returns the run's row id.
func (r *Run) ID() int64 {
	return r.id
}

// RecordGeneration persists one generation's metrics.
func (r *Run) RecordGeneration(ctx context.Context, m monitor.GenerationMetrics) error {
	leap := 0
	if m.LeapFlag {
		leap = 1
	}
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO generations
		 (run_id, generation, average_age, average_discrepancy, survivor_count,
		  cohesion_mean, cohesion_median, oracle_accuracy, oracle_interactions, leap_flag, z_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, m.Generation, m.AverageAge, m.AverageDiscrepancy, m.SurvivorCount,
		nullable(m.CohesionMean), nullable(m.CohesionMedian),
		m.OracleAccuracy, m.OracleInteractions, leap, nullable(m.ZScore))
	if err != nil {
		return fmt.Errorf("failed to insert generation %d: %w", m.Generation, err)
	}
	return nil
}

// RecordLeap persists one leap event.
func (r *Run) RecordLeap(ctx context.Context, ev monitor.LeapEvent) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO leaps
		 (run_id, generation, cohesion, accuracy, baseline_mean, baseline_std, z_score, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, ev.Generation, ev.Cohesion, nullable(ev.Accuracy),
		ev.BaselineMean, ev.BaselineStd, ev.ZScore, ev.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert leap at generation %d: %w", ev.Generation, err)
	}
	return nil
}

// ListRuns returns all recorded runs, newest first.
func (s *ExperimentStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.seed, r.population_size, r.genome_size, r.generations,
		        (SELECT COUNT(*) FROM generations g WHERE g.run_id = r.id),
		        (SELECT COUNT(*) FROM leaps l WHERE l.run_id = r.id)
		 FROM runs r ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var startedAt string
		if err := rows.Scan(&info.ID, &startedAt, &info.Seed,
			&info.PopulationSize, &info.GenomeSize, &info.Generations,
			&info.Recorded, &info.Leaps); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			info.StartedAt = t
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// LatestRunID returns the id of the most recent run, or an error when the
// store is empty.
func (s *ExperimentStore) LatestRunID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no runs recorded")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query latest run: %w", err)
	}
	return id, nil
}

// RunHistory returns the per-generation metrics of a run in generation
// order.
func (s *ExperimentStore) RunHistory(ctx context.Context, runID int64) ([]monitor.GenerationMetrics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT generation, average_age, average_discrepancy, survivor_count,
		        cohesion_mean, cohesion_median, oracle_accuracy, oracle_interactions, leap_flag, z_score
		 FROM generations WHERE run_id = ? ORDER BY generation`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var history []monitor.GenerationMetrics
	for rows.Next() {
		var m monitor.GenerationMetrics
		var cohesionMean, cohesionMedian, zScore sql.NullFloat64
		var leap int
		if err := rows.Scan(&m.Generation, &m.AverageAge, &m.AverageDiscrepancy, &m.SurvivorCount,
			&cohesionMean, &cohesionMedian, &m.OracleAccuracy, &m.OracleInteractions, &leap, &zScore); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		m.LeapFlag = leap != 0
		m.CohesionMean = optional(cohesionMean)
		m.CohesionMedian = optional(cohesionMedian)
		m.ZScore = optional(zScore)
		history = append(history, m)
	}
	return history, rows.Err()
}

// Leaps returns the leap events of a run in generation order.
func (s *ExperimentStore) Leaps(ctx context.Context, runID int64) ([]monitor.LeapEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT generation, cohesion, accuracy, baseline_mean, baseline_std, z_score, reason
		 FROM leaps WHERE run_id = ? ORDER BY generation`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaps: %w", err)
	}
	defer rows.Close()

	var leaps []monitor.LeapEvent
	for rows.Next() {
		var ev monitor.LeapEvent
		var accuracy sql.NullFloat64
		if err := rows.Scan(&ev.Generation, &ev.Cohesion, &accuracy,
			&ev.BaselineMean, &ev.BaselineStd, &ev.ZScore, &ev.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan leap: %w", err)
		}
		ev.Type = monitor.LeapEventType
		ev.Accuracy = optional(accuracy)
		leaps = append(leaps, ev)
	}
	return leaps, rows.Err()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optional(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
