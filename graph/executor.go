package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/researchgraph-go/graph/emit"
	"github.com/dshills/researchgraph-go/graph/store"
)

// Executor drives one thread's state from its current stage to a terminal
// stage, checkpointing after every step.
//
// The loop per step: resolve the step from the stage dispatch table, execute
// it under the step timeout, merge its delta through the reducer, persist a
// checkpoint, emit events, then resolve the next step from the graph's
// edges. Checkpointing is synchronous: the write for step N completes before
// step N+1 reads state, so a resume after a crash re-executes at most the
// step that was in flight.
//
// Steps within one thread run strictly sequentially. Distinct threads are
// independent; run them on separate goroutines (see Pool). Only one Executor
// should own a given thread id at a time. That is a convention, not enforced
// by the store.
//
// Type parameter S is the state type, D the delta type.
type Executor[S, D any] struct {
	graph   *Graph[S, D]
	reduce  Reducer[S, D]
	stageOf func(S) string
	store   store.Store[S]
	emitter emit.Emitter
	opts    Options
}

// NewExecutor creates an Executor for the given graph.
//
// Parameters:
//   - g: the workflow graph (required)
//   - reduce: merges step deltas into state (required)
//   - stageOf: extracts the stage marker the dispatch table is keyed on (required)
//   - st: checkpoint persistence (required)
//   - emitter: observability events (optional, nil disables emission)
//   - opts: functional options (MaxSteps, StepTimeout, Metrics)
func NewExecutor[S, D any](g *Graph[S, D], reduce Reducer[S, D], stageOf func(S) string, st store.Store[S], emitter emit.Emitter, opts ...Option) *Executor[S, D] {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}

	return &Executor[S, D]{
		graph:   g,
		reduce:  reduce,
		stageOf: stageOf,
		store:   st,
		emitter: emitter,
		opts:    o,
	}
}

// Run executes the thread until a terminal step and returns the final state.
//
// If a checkpoint exists for threadID it wins: execution continues from the
// persisted state and initial is ignored. Otherwise initial becomes the
// starting state; a nil initial with no checkpoint fails with
// *UnknownThreadError and creates nothing.
//
// Cancellation is cooperative: the loop checks ctx between steps, never
// mid-step. A cancelled run returns ctx.Err() and leaves the last completed
// step's checkpoint intact and resumable.
func (x *Executor[S, D]) Run(ctx context.Context, threadID string, initial *S) (S, error) {
	return x.run(ctx, threadID, initial, nil)
}

// Resume is Run without an initial state: it reloads the latest checkpoint
// and continues from there. The defining property is that only the step in
// progress at crash time is re-executed, never earlier steps.
func (x *Executor[S, D]) Resume(ctx context.Context, threadID string) (S, error) {
	return x.run(ctx, threadID, nil, nil)
}

// StreamResult carries the outcome of a streamed run.
type StreamResult[S any] struct {
	State S
	Err   error
}

// Stream runs the thread like Run while delivering step ids on the first
// channel as each step completes. The label sequence is finite, ending at
// the terminal step, and is not restartable: a fresh call replays from the
// checkpoint, which may already be further along. The second channel
// receives exactly one StreamResult when the run finishes.
func (x *Executor[S, D]) Stream(ctx context.Context, threadID string, initial *S) (<-chan string, <-chan StreamResult[S]) {
	labels := make(chan string)
	done := make(chan StreamResult[S], 1)

	go func() {
		defer close(labels)
		defer close(done)

		onStep := func(stepID string) {
			select {
			case labels <- stepID:
			case <-ctx.Done():
			}
		}

		state, err := x.run(ctx, threadID, initial, onStep)
		done <- StreamResult[S]{State: state, Err: err}
	}()

	return labels, done
}

func (x *Executor[S, D]) run(ctx context.Context, threadID string, initial *S, onStep func(string)) (S, error) {
	var zero S

	if x.graph == nil || x.reduce == nil || x.stageOf == nil || x.store == nil {
		return zero, fmt.Errorf("executor is missing graph, reducer, stage accessor, or store")
	}
	if threadID == "" {
		return zero, fmt.Errorf("thread id cannot be empty")
	}

	// Checkpoint wins over the caller-supplied initial state.
	var state S
	var stepNum int
	snap, err := x.store.Latest(ctx, threadID)
	switch {
	case err == nil:
		state = snap.State
		stepNum = snap.Step
	case errors.Is(err, store.ErrNotFound):
		if initial == nil {
			return zero, &UnknownThreadError{ThreadID: threadID}
		}
		state = *initial
	default:
		return zero, fmt.Errorf("load checkpoint for thread %s: %w", threadID, err)
	}

	current, err := x.graph.stepForStage(x.stageOf(state))
	if err != nil {
		return zero, err
	}

	executed := 0
	for current != End {
		executed++
		if executed > x.opts.MaxSteps {
			return zero, ErrMaxSteps
		}

		// Cooperative cancellation, between steps only.
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		fn, ok := x.graph.step(current)
		if !ok {
			return zero, fmt.Errorf("step not found during execution: %s", current)
		}

		x.emitter.Emit(emit.Event{
			ThreadID: threadID,
			Step:     stepNum + 1,
			StepID:   current,
			Msg:      emit.MsgStepStart,
		})

		start := time.Now()
		delta, err := executeStepWithTimeout(ctx, fn, current, state, x.opts.StepTimeout)
		if err != nil {
			if x.opts.Metrics != nil {
				x.opts.Metrics.RecordStep(current, time.Since(start), "error")
			}
			x.emitter.Emit(emit.Event{
				ThreadID: threadID,
				Step:     stepNum + 1,
				StepID:   current,
				Msg:      emit.MsgError,
				Meta:     map[string]interface{}{"error": err.Error()},
			})
			return zero, &StepError{StepID: current, Err: err}
		}

		state = x.reduce(state, delta)
		stepNum++

		// Synchronous checkpoint: the write happens-before the next step.
		if err := x.store.Put(ctx, threadID, stepNum, current, state); err != nil {
			return zero, fmt.Errorf("save checkpoint for thread %s step %d: %w", threadID, stepNum, err)
		}

		if x.opts.Metrics != nil {
			x.opts.Metrics.RecordStep(current, time.Since(start), "success")
			x.opts.Metrics.IncrementCheckpoints()
		}
		x.emitter.Emit(emit.Event{
			ThreadID: threadID,
			Step:     stepNum,
			StepID:   current,
			Msg:      emit.MsgStepEnd,
			Meta:     map[string]interface{}{"duration_ms": time.Since(start).Milliseconds(), "stage": x.stageOf(state)},
		})

		if onStep != nil {
			onStep(current)
		}

		next, err := x.graph.next(current, state)
		if err != nil {
			return zero, err
		}
		if next != End {
			x.emitter.Emit(emit.Event{
				ThreadID: threadID,
				Step:     stepNum,
				StepID:   current,
				Msg:      emit.MsgRoutingDecision,
				Meta:     map[string]interface{}{"next": next},
			})
		}
		current = next
	}

	return state, nil
}
