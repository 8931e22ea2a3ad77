// Package store provides checkpoint persistence for workflow threads.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a thread id has no persisted checkpoints.
var ErrNotFound = errors.New("not found")

// Snapshot is one persisted checkpoint: the full state after a step
// completed, tagged with its position in the thread's history.
type Snapshot[S any] struct {
	// Step is the sequential step number within the thread (1-indexed).
	Step int `json:"step"`

	// StepID identifies the step that produced this state.
	StepID string `json:"step_id"`

	// State is the workflow state after the step's delta was merged.
	State S `json:"state"`
}

// Store is the durable thread-to-state mapping the Executor checkpoints
// through, plus an append-only per-thread history for inspection and replay.
//
// Implementations must make Put atomic: a concurrent Latest never observes a
// partial write. The engine never deletes history; retention is an external
// policy.
//
// Type parameter S is the state type to persist.
type Store[S any] interface {
	// Put persists the state after a step completed. Writing the same
	// (threadID, step) pair again replaces the entry, which keeps crash
	// recovery idempotent when a step is re-executed after resume.
	Put(ctx context.Context, threadID string, step int, stepID string, state S) error

	// Latest retrieves the most recent snapshot for a thread, the one with
	// the highest step number. Returns ErrNotFound for unknown thread ids.
	Latest(ctx context.Context, threadID string) (Snapshot[S], error)

	// History returns every snapshot for a thread ordered by step, most
	// recent last. Returns ErrNotFound for unknown thread ids.
	History(ctx context.Context, threadID string) ([]Snapshot[S], error)
}
