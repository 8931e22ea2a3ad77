package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store[S].
//
// It persists checkpoints in a single-file database, giving crash recovery
// across process restarts with zero setup. Designed for:
//   - Local and single-process deployments
//   - Development against a durable store before moving to MySQL
//
// WAL mode is enabled so readers don't block the single writer.
//
// Type parameter S is the state type to persist (must be JSON-serializable).
type SQLiteStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore creates a SQLite-backed store at path.
//
// The path may be a file ("./research.db"), an absolute path, or ":memory:"
// for an ephemeral database. The schema is created on first use.
//
// Example:
//
//	st, err := store.NewSQLiteStore[research.State]("./research.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore[S]{
		db:   db,
		path: path,
	}

	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore[S]) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			step_id TEXT NOT NULL,
			state TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(thread_id, step)
		)
	`
	if _, err := s.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create checkpoints table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_checkpoints_thread ON checkpoints(thread_id, step)"); err != nil {
		return fmt.Errorf("failed to create idx_checkpoints_thread: %w", err)
	}

	return nil
}

// Put persists one checkpoint. The UNIQUE(thread_id, step) constraint plus
// INSERT OR REPLACE makes re-executing a step after resume idempotent.
func (s *SQLiteStore[S]) Put(ctx context.Context, threadID string, step int, stepID string, state S) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO checkpoints (thread_id, step, step_id, state) VALUES (?, ?, ?, ?)",
		threadID, step, stepID, string(stateJSON))
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return nil
}

// Latest returns the snapshot with the highest step number for the thread.
func (s *SQLiteStore[S]) Latest(ctx context.Context, threadID string) (Snapshot[S], error) {
	var zero Snapshot[S]
	if err := s.checkOpen(); err != nil {
		return zero, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT step, step_id, state FROM checkpoints WHERE thread_id = ? ORDER BY step DESC LIMIT 1",
		threadID)

	var snap Snapshot[S]
	var stateJSON string
	if err := row.Scan(&snap.Step, &snap.StepID, &stateJSON); err != nil {
		if err == sql.ErrNoRows {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}

	if err := json.Unmarshal([]byte(stateJSON), &snap.State); err != nil {
		return zero, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return snap, nil
}

// History returns every snapshot for the thread ordered by step.
func (s *SQLiteStore[S]) History(ctx context.Context, threadID string) ([]Snapshot[S], error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT step, step_id, state FROM checkpoints WHERE thread_id = ? ORDER BY step ASC",
		threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []Snapshot[S]
	for rows.Next() {
		var snap Snapshot[S]
		var stateJSON string
		if err := rows.Scan(&snap.Step, &snap.StepID, &stateJSON); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		if err := json.Unmarshal([]byte(stateJSON), &snap.State); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	if len(snaps) == 0 {
		return nil, ErrNotFound
	}

	return snaps, nil
}

// Close releases the database connection. Further calls on the store return
// an error.
func (s *SQLiteStore[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore[S]) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}
