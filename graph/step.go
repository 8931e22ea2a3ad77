package graph

import "context"

// End is the terminal routing label. A router target mapped to End, or a
// stage bound to End, stops execution. A step with no outgoing edge is
// equally terminal.
const End = "__end__"

// Step is a single unit of work in the workflow graph.
//
// A step receives a read view of the current state and returns a delta
// describing the fields it wants changed. Steps never mutate shared state
// directly; the Executor merges the delta through the configured Reducer.
// Expected failure modes (a failed sub-call the pipeline can continue past)
// should be recorded as data inside the delta, not returned as an error.
// A returned error is fatal for the run: the Executor stops without
// checkpointing the failed step, leaving the previous checkpoint intact
// for resume.
//
// Type parameter S is the state type, D the delta type.
//
// Example:
//
//	greet := func(ctx context.Context, s MyState) (MyDelta, error) {
//	    return MyDelta{Greeting: ptr("hello " + s.Name)}, nil
//	}
type Step[S, D any] func(ctx context.Context, state S) (D, error)

// Router chooses the next step after a conditional edge.
//
// Routers are consulted after designated steps and must return one of the
// labels declared on the conditional edge. They may only inspect state,
// never raw errors; an unmapped label surfaces as a *RoutingError at
// execution time.
type Router[S any] func(state S) string

// Reducer merges a step's delta into the previous state.
//
// The merge is a shallow field overwrite: slice-valued fields present in
// the delta replace the previous value, they are never implicitly
// appended. Append semantics are the step's responsibility before it
// returns the delta. Reducers must be deterministic and side-effect free.
type Reducer[S, D any] func(prev S, delta D) S
