package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL implementation of Store[S].
//
// Use it when checkpoints must be shared across hosts or survive beyond a
// single machine. The schema mirrors SQLiteStore: one checkpoints table,
// unique per (thread_id, step), JSON state column.
//
// Type parameter S is the state type to persist (must be JSON-serializable).
type MySQLStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore creates a MySQL-backed store from a DSN like
// "user:pass@tcp(localhost:3306)/research?parseTime=true".
//
// The connection is verified with a ping and the schema is created on first
// use.
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore[S]{db: db}

	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func (s *MySQLStore[S]) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			thread_id VARCHAR(255) NOT NULL,
			step INT NOT NULL,
			step_id VARCHAR(255) NOT NULL,
			state JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_thread_step (thread_id, step),
			KEY idx_thread (thread_id)
		)
	`
	if _, err := s.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create checkpoints table: %w", err)
	}

	return nil
}

// Put persists one checkpoint, replacing any existing row for the same
// (threadID, step) so re-executed steps after resume stay idempotent.
func (s *MySQLStore[S]) Put(ctx context.Context, threadID string, step int, stepID string, state S) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, step, step_id, state)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE step_id = VALUES(step_id), state = VALUES(state)`,
		threadID, step, stepID, string(stateJSON))
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return nil
}

// Latest returns the snapshot with the highest step number for the thread.
func (s *MySQLStore[S]) Latest(ctx context.Context, threadID string) (Snapshot[S], error) {
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
func (s *MySQLStore[S]) History(ctx context.Context, threadID string) ([]Snapshot[S], error) {
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

// Close releases the database connection pool.
func (s *MySQLStore[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *MySQLStore[S]) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}
