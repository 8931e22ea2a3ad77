package graph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ThreadRequest describes one thread for Pool.RunAll. A nil Initial resumes
// an existing thread from its checkpoint.
type ThreadRequest[S any] struct {
	ThreadID string
	Initial  *S
}

// ThreadResult is the outcome of one thread run.
type ThreadResult[S any] struct {
	ThreadID string
	State    S
	Err      error
}

// Pool runs independent workflow threads concurrently through one Executor.
//
// Threads share no mutable state, so the only resource to bound is the
// fan-out of concurrent external-collaborator calls. The pool gates thread
// starts with an errgroup limit; steps within each thread stay strictly
// sequential.
type Pool[S, D any] struct {
	exec  *Executor[S, D]
	limit int
}

// NewPool creates a pool over exec with at most limit threads in flight.
// A limit of 0 or less means unbounded.
func NewPool[S, D any](exec *Executor[S, D], limit int) *Pool[S, D] {
	return &Pool[S, D]{exec: exec, limit: limit}
}

// RunAll executes every requested thread and returns one result per request,
// in request order. Per-thread failures are reported in the corresponding
// ThreadResult, not as the function error; the returned error is non-nil
// only when the shared context is cancelled before all threads finish.
func (p *Pool[S, D]) RunAll(ctx context.Context, reqs []ThreadRequest[S]) ([]ThreadResult[S], error) {
	results := make([]ThreadResult[S], len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = ThreadResult[S]{ThreadID: req.ThreadID, Err: err}
				return err
			}

			if m := p.exec.opts.Metrics; m != nil {
				m.ThreadStarted()
				defer m.ThreadFinished()
			}

			state, err := p.exec.Run(gctx, req.ThreadID, req.Initial)
			results[i] = ThreadResult[S]{ThreadID: req.ThreadID, State: state, Err: err}

			// A thread failure stays local to its result slot. Only context
			// cancellation tears down the group.
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
