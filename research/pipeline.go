package research

import (
	"fmt"

	"github.com/dshills/researchgraph-go/graph"
	"github.com/dshills/researchgraph-go/graph/emit"
	"github.com/dshills/researchgraph-go/graph/store"
)

// Step ids in the research pipeline.
const (
	StepPlan        = "plan"
	StepSearch      = "search"
	StepValidate    = "validate"
	StepProcess     = "process"
	StepGenerate    = "generate"
	StepHandleError = "handle_error"
)

// NewPipeline builds the research workflow graph:
//
//	plan -> search -> validate -?-> process -> generate
//	                      |
//	                      +-?-> handle_error -?-> search | end
//
// Every stage is bound to its step at build time, so a resumed thread
// routes from its checkpointed stage without guessing.
func NewPipeline(steps *Steps) (*graph.Graph[State, Delta], error) {
	g := graph.New[State, Delta]()

	for id, fn := range map[string]graph.Step[State, Delta]{
		StepPlan:        steps.Plan,
		StepSearch:      steps.ExecuteSearch,
		StepValidate:    steps.Validate,
		StepProcess:     steps.Process,
		StepGenerate:    steps.Generate,
		StepHandleError: steps.HandleError,
	} {
		if err := g.AddStep(id, fn); err != nil {
			return nil, fmt.Errorf("failed to add step %s: %w", id, err)
		}
	}

	if err := g.AddEdge(StepPlan, StepSearch); err != nil {
		return nil, err
	}
	if err := g.AddEdge(StepSearch, StepValidate); err != nil {
		return nil, err
	}
	if err := g.AddConditionalEdge(StepValidate, RouteAfterValidate, map[string]string{
		StepProcess:     StepProcess,
		StepHandleError: StepHandleError,
	}); err != nil {
		return nil, err
	}
	if err := g.AddEdge(StepProcess, StepGenerate); err != nil {
		return nil, err
	}
	// Generate has no outgoing edge; it is the terminal step.
	if err := g.AddConditionalEdge(StepHandleError, RouteAfterError, map[string]string{
		StepSearch: StepSearch,
		routeEnd:   graph.End,
	}); err != nil {
		return nil, err
	}

	if err := g.SetEntry(StepPlan); err != nil {
		return nil, err
	}

	for stage, stepID := range map[Stage]string{
		StagePlanning:   StepPlan,
		StageSearching:  StepSearch,
		StageValidating: StepValidate,
		StageProcessing: StepProcess,
		StageGenerating: StepGenerate,
		StageError:      StepHandleError,
		StageComplete:   graph.End,
	} {
		if err := g.BindStage(string(stage), stepID); err != nil {
			return nil, fmt.Errorf("failed to bind stage %s: %w", stage, err)
		}
	}

	return g, nil
}

// NewExecutor builds a ready-to-run executor for the research pipeline.
// The step timeout from the Config applies unless overridden by opts.
func NewExecutor(steps *Steps, st store.Store[State], emitter emit.Emitter, opts ...graph.Option) (*graph.Executor[State, Delta], error) {
	g, err := NewPipeline(steps)
	if err != nil {
		return nil, err
	}

	execOpts := append([]graph.Option{graph.WithStepTimeout(steps.Config.StepTimeout)}, opts...)

	return graph.NewExecutor(g, Reduce, StageOf, st, emitter, execOpts...), nil
}
