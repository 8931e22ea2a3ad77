package graph

import (
	"errors"
	"fmt"
)

// ErrMaxSteps is returned when a run exceeds the configured MaxSteps limit,
// usually because a routing loop is missing its exit condition.
var ErrMaxSteps = errors.New("workflow exceeded max steps limit")

// ErrNoEntry is returned when a run starts on a graph with no entry step and
// no stage bindings to dispatch from.
var ErrNoEntry = errors.New("no entry step set (call SetEntry before running)")

// DuplicateStepError is returned by AddStep when a step id is registered twice.
type DuplicateStepError struct {
	// ID is the colliding step identifier.
	ID string
}

func (e *DuplicateStepError) Error() string {
	return "duplicate step id: " + e.ID
}

// RoutingError is returned at execution time when a router produces a label
// that is not mapped on its conditional edge. Routers are data-dependent, so
// this cannot be caught at build time; an unmapped label is a hard error,
// never a silent default.
type RoutingError struct {
	// From is the step whose conditional edge was being resolved.
	From string

	// Label is the unmapped value the router returned.
	Label string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("router after step %q returned unmapped label %q", e.From, e.Label)
}

// UnknownThreadError is returned when a run is resumed for a thread id that
// has no persisted checkpoint and no initial state was supplied. No state is
// created in that case.
type UnknownThreadError struct {
	ThreadID string
}

func (e *UnknownThreadError) Error() string {
	return "unknown thread " + e.ThreadID + ": no checkpoint exists and no initial state was provided"
}

// UnboundStageError is returned when the state's stage marker has no step
// bound to it. Stage bindings are validated when declared, so hitting this at
// run time means a step left the stage set to a value the graph never bound.
type UnboundStageError struct {
	Stage string
}

func (e *UnboundStageError) Error() string {
	return fmt.Sprintf("no step bound for stage %q", e.Stage)
}

// StepError wraps a fatal error returned by a step function.
//
// The Executor has no recovery policy for step-level failures: the error
// propagates as a run-level failure distinct from a normal terminal state,
// and the last persisted checkpoint remains in place for resume.
type StepError struct {
	// StepID identifies the step that failed.
	StepID string

	// Err is the underlying error.
	Err error
}

func (e *StepError) Error() string {
	return "step " + e.StepID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StepError) Unwrap() error {
	return e.Err
}
