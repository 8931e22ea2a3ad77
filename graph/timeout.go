package graph

import (
	"context"
	"fmt"
	"time"
)

// DefaultStepTimeout bounds a single step's execution when no explicit
// timeout is configured. It is deliberately generous: steps block on
// external LLM and search calls whose own timeouts sit in the same range.
const DefaultStepTimeout = 300 * time.Second

// DefaultMaxSteps limits a run when no explicit MaxSteps is configured.
const DefaultMaxSteps = 100

// executeStepWithTimeout runs one step under the configured timeout.
//
// A timeout of 0 means DefaultStepTimeout; negative disables the limit. When
// the deadline fires the step's error is wrapped so callers can tell a
// timeout from an ordinary step failure while errors.Is still matches
// context.DeadlineExceeded.
func executeStepWithTimeout[S, D any](ctx context.Context, fn Step[S, D], stepID string, state S, timeout time.Duration) (D, error) {
	if timeout == 0 {
		timeout = DefaultStepTimeout
	}
	if timeout < 0 {
		return fn(ctx, state)
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delta, err := fn(stepCtx, state)
	if err != nil && stepCtx.Err() == context.DeadlineExceeded {
		var zero D
		return zero, fmt.Errorf("step %s exceeded timeout of %v: %w", stepID, timeout, err)
	}

	return delta, err
}
