//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteMonitor keeps episode rows in an episodes table so long runs can
// be inspected from another process.
type SQLiteMonitor struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteMonitor(path string) *SQLiteMonitor {
	return &SQLiteMonitor{path: path}
}

func (s *SQLiteMonitor) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteMonitor) RecordEpisode(ctx context.Context, runID string, row EpisodeRow) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO episodes (run_id, episode, episode_return, length, final_distance, divergent, sim_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, episode) DO UPDATE SET
			episode_return = excluded.episode_return,
			length = excluded.length,
			final_distance = excluded.final_distance,
			divergent = excluded.divergent,
			sim_time = excluded.sim_time
	`, runID, row.Episode, row.Return, row.Length, nullable(row.FinalDistance), row.Divergent, row.SimulationTime)
	return err
}

func (s *SQLiteMonitor) Episodes(ctx context.Context, runID string) ([]EpisodeRow, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT episode, episode_return, length, final_distance, divergent, sim_time
		FROM episodes WHERE run_id = ? ORDER BY episode
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]EpisodeRow, 0)
	for rows.Next() {
		var row EpisodeRow
		var dist sql.NullFloat64
		if err := rows.Scan(&row.Episode, &row.Return, &row.Length, &dist, &row.Divergent, &row.SimulationTime); err != nil {
			return nil, err
		}
		row.FinalDistance = math.NaN()
		if dist.Valid {
			row.FinalDistance = dist.Float64
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQLiteMonitor) Runs(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT DISTINCT run_id FROM episodes ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteMonitor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteMonitor) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errMonitorNotInitialized
	}
	return s.db, nil
}

// nullable stores a diverged episode's NaN distance as NULL.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL,
			episode INTEGER NOT NULL,
			episode_return REAL NOT NULL,
			length INTEGER NOT NULL,
			final_distance REAL,
			divergent INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			PRIMARY KEY (run_id, episode)
		);
	`)
	return err
}
