// Package graph provides a deterministic, resumable workflow engine.
//
// A workflow is declared once as a Graph of steps and edges, then driven by
// an Executor that merges step deltas into state, checkpoints after every
// step, and routes to the next step from the state's stage marker.
package graph

import (
	"fmt"
	"sync"
)

// conditionalEdge pairs a router with its declared label-to-step mapping.
type conditionalEdge[S any] struct {
	router  Router[S]
	targets map[string]string
}

// Graph is the static definition of a workflow: steps, unconditional edges,
// router-guarded edges, the entry step, and the stage dispatch table.
//
// A Graph is built once and treated as immutable afterwards. It carries no
// execution state; the same Graph can drive any number of concurrent threads
// through separate Executors.
//
// Example:
//
//	g := graph.New[MyState, MyDelta]()
//	_ = g.AddStep("fetch", fetchStep)
//	_ = g.AddStep("render", renderStep)
//	_ = g.AddEdge("fetch", "render")
//	_ = g.SetEntry("fetch")
type Graph[S, D any] struct {
	mu sync.RWMutex

	// steps maps step ids to their functions
	steps map[string]Step[S, D]

	// edges holds unconditional transitions, one outgoing per step
	edges map[string]string

	// conditionals holds router-guarded transitions keyed by source step
	conditionals map[string]conditionalEdge[S]

	// entry is the first step run for a fresh state
	entry string

	// stages maps stage markers to step ids for resume dispatch
	stages map[string]string
}

// New creates an empty workflow graph.
//
// Type parameter S is the state type threaded through every step, D the
// delta type steps return.
func New[S, D any]() *Graph[S, D] {
	return &Graph[S, D]{
		steps:        make(map[string]Step[S, D]),
		edges:        make(map[string]string),
		conditionals: make(map[string]conditionalEdge[S]),
		stages:       make(map[string]string),
	}
}

// AddStep registers a step function under a unique id.
//
// Returns *DuplicateStepError if the id is already registered, and a plain
// error for an empty id or nil function.
func (g *Graph[S, D]) AddStep(id string, fn Step[S, D]) error {
	if id == "" {
		return fmt.Errorf("step id cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("step %q: function cannot be nil", id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.steps[id]; exists {
		return &DuplicateStepError{ID: id}
	}

	g.steps[id] = fn
	return nil
}

// AddEdge declares an unconditional transition from one step to the next.
//
// Each step may have at most one unconditional outgoing edge; declaring a
// second replaces the first. Step existence is validated lazily so graphs
// can be wired in any order.
func (g *Graph[S, D]) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("edge endpoints cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = to
	return nil
}

// AddConditionalEdge declares a router-guarded transition.
//
// After the step identified by from completes, the router is called with the
// merged state and must return one of the keys in targets. The mapped value
// is the next step id, or End to stop. A label missing from targets fails
// with *RoutingError when it happens, not at build time, since router output
// is data-dependent.
func (g *Graph[S, D]) AddConditionalEdge(from string, router Router[S], targets map[string]string) error {
	if from == "" {
		return fmt.Errorf("conditional edge source cannot be empty")
	}
	if router == nil {
		return fmt.Errorf("conditional edge from %q: router cannot be nil", from)
	}
	if len(targets) == 0 {
		return fmt.Errorf("conditional edge from %q: targets cannot be empty", from)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	copied := make(map[string]string, len(targets))
	for label, to := range targets {
		copied[label] = to
	}

	g.conditionals[from] = conditionalEdge[S]{router: router, targets: copied}
	return nil
}

// SetEntry designates the first step run for a fresh state.
//
// The step must already be registered.
func (g *Graph[S, D]) SetEntry(id string) error {
	if id == "" {
		return fmt.Errorf("entry step id cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.steps[id]; !exists {
		return fmt.Errorf("entry step does not exist: %s", id)
	}

	g.entry = id
	return nil
}

// BindStage maps a stage marker to the step that handles it.
//
// The Executor dispatches from the checkpointed stage through this table on
// entry and resume, so a crash mid-run re-enters at exactly the step the
// stage points at. Bind a terminal stage to End. Unlike router labels, the
// binding is validated here: the step must exist at declaration time.
func (g *Graph[S, D]) BindStage(stage, stepID string) error {
	if stage == "" {
		return fmt.Errorf("stage cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if stepID != End {
		if _, exists := g.steps[stepID]; !exists {
			return fmt.Errorf("cannot bind stage %q: step does not exist: %s", stage, stepID)
		}
	}

	g.stages[stage] = stepID
	return nil
}

// step returns the registered function for a step id.
func (g *Graph[S, D]) step(id string) (Step[S, D], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	fn, ok := g.steps[id]
	return fn, ok
}

// stepForStage resolves the stage marker to a step id.
//
// Graphs without stage bindings dispatch to the entry step; graphs with
// bindings are strict, an unbound stage is an *UnboundStageError.
func (g *Graph[S, D]) stepForStage(stage string) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.stages) == 0 {
		if g.entry == "" {
			return "", ErrNoEntry
		}
		return g.entry, nil
	}

	id, ok := g.stages[stage]
	if !ok {
		return "", &UnboundStageError{Stage: stage}
	}
	return id, nil
}

// next resolves the step to run after from, given the merged state.
//
// Conditional edges take precedence over unconditional ones. A step with
// neither is terminal and resolves to End.
func (g *Graph[S, D]) next(from string, state S) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if ce, ok := g.conditionals[from]; ok {
		label := ce.router(state)
		to, mapped := ce.targets[label]
		if !mapped {
			return "", &RoutingError{From: from, Label: label}
		}
		return to, nil
	}

	if to, ok := g.edges[from]; ok {
		return to, nil
	}

	return End, nil
}
