package store

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Store[S].
//
// Designed for development, testing, and short-lived workflows where
// persistence across process restarts isn't required. Thread-safe.
//
// Data is lost when the process terminates; use SQLiteStore or MySQLStore
// for crash recovery.
type MemStore[S any] struct {
	mu    sync.RWMutex
	steps map[string][]Snapshot[S] // threadID -> snapshots ordered by insertion
}

// NewMemStore creates a new in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		steps: make(map[string][]Snapshot[S]),
	}
}

// Put appends or replaces the snapshot for (threadID, step).
func (m *MemStore[S]) Put(_ context.Context, threadID string, step int, stepID string, state S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot[S]{
		Step:   step,
		StepID: stepID,
		State:  state,
	}

	// Replace on step collision so re-executed steps after a resume don't
	// duplicate history entries.
	for i, existing := range m.steps[threadID] {
		if existing.Step == step {
			m.steps[threadID][i] = snap
			return nil
		}
	}

	m.steps[threadID] = append(m.steps[threadID], snap)
	return nil
}

// Latest returns the snapshot with the highest step number.
func (m *MemStore[S]) Latest(_ context.Context, threadID string) (Snapshot[S], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := m.steps[threadID]
	if len(snaps) == 0 {
		var zero Snapshot[S]
		return zero, ErrNotFound
	}

	latest := snaps[0]
	for _, snap := range snaps[1:] {
		if snap.Step > latest.Step {
			latest = snap
		}
	}

	return latest, nil
}

// History returns a copy of the thread's snapshots ordered by step.
func (m *MemStore[S]) History(_ context.Context, threadID string) ([]Snapshot[S], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := m.steps[threadID]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}

	out := make([]Snapshot[S], len(snaps))
	copy(out, snaps)
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })

	return out, nil
}
