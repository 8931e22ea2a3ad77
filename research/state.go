// Package research implements a six-step research pipeline: plan a query
// into subqueries, search the web, validate the results, extract findings,
// and generate a report, with bounded retry through an error handler.
//
// The pipeline runs on the generic workflow engine in graph; this package
// supplies the state shape, the steps, the routers, and the wiring.
package research

import "github.com/dshills/researchgraph-go/graph/model"

// Stage is the pipeline's position marker. Routing decisions read the
// stage and nothing else, so resuming a thread from its checkpoint always
// lands on the same next step.
type Stage string

// Pipeline stages.
const (
	StagePlanning   Stage = "planning"
	StageSearching  Stage = "searching"
	StageValidating Stage = "validating"
	StageProcessing Stage = "processing"
	StageGenerating Stage = "generating"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// Valid reports whether the stage is one of the defined pipeline stages.
func (s Stage) Valid() bool {
	switch s {
	case StagePlanning, StageSearching, StageValidating, StageProcessing,
		StageGenerating, StageComplete, StageError:
		return true
	}
	return false
}

// Result is one search outcome. A failed query is recorded here as data
// rather than aborting the pipeline; validation decides later whether
// enough queries succeeded.
type Result struct {
	// Query is the subquery that was searched.
	Query string `json:"query"`

	// Payload is the search result text. Empty when the query failed.
	Payload string `json:"payload,omitempty"`

	// Err holds the failure message when the query errored.
	Err string `json:"error,omitempty"`
}

// Failed reports whether this result represents a search failure.
func (r Result) Failed() bool {
	return r.Err != ""
}

// State is the full pipeline state checkpointed after every step.
//
// Results is append-only: retries add new results, they never erase what
// earlier attempts recorded. Report is set exactly when Stage is complete,
// either the generated report or the failure template.
type State struct {
	// Conversation accumulates the LLM exchange across steps.
	Conversation []model.Message `json:"conversation"`

	// TaskQuery is the user's original research question.
	TaskQuery string `json:"task_query"`

	// TaskPlan is the model's research plan text.
	TaskPlan string `json:"task_plan,omitempty"`

	// Subqueries are the parsed search queries from the plan.
	Subqueries []string `json:"subqueries,omitempty"`

	// Results holds every search outcome, successes and failures alike.
	Results []Result `json:"results,omitempty"`

	// Findings are the bullet points extracted from search payloads.
	Findings []string `json:"findings,omitempty"`

	// Report is the final output. Non-empty exactly when Stage is complete.
	Report string `json:"report,omitempty"`

	// Stage is the routing key for the next step.
	Stage Stage `json:"stage"`

	// RetryCount counts validation failures so far.
	RetryCount int `json:"retry_count"`

	// MaxRetries bounds how many validation failures trigger a re-search.
	MaxRetries int `json:"max_retries"`

	// ErrorDetail describes the current failure while Stage is error.
	ErrorDetail string `json:"error_detail,omitempty"`
}

// NewState creates the initial state for a research question.
func NewState(query string, maxRetries int) State {
	return State{
		Conversation: []model.Message{
			{Role: model.RoleUser, Content: query},
		},
		TaskQuery:  query,
		Stage:      StagePlanning,
		MaxRetries: maxRetries,
	}
}

// Delta is a step's partial state update. Nil fields leave the previous
// value untouched; set fields overwrite it.
//
// Scalars use pointers so a step can distinguish "no change" from "set to
// the zero value", which matters when the error handler clears ErrorDetail
// before a retry. Slices replace wholesale; a step that wants append
// semantics (ExecuteSearch does, for Results) copies the previous slice
// into its delta itself.
type Delta struct {
	Conversation []model.Message
	TaskPlan     *string
	Subqueries   []string
	Results      []Result
	Findings     []string
	Report       *string
	Stage        Stage
	RetryCount   *int
	ErrorDetail  *string
}

// Reduce merges a delta into the previous state, returning the new state.
// The previous state is never mutated.
func Reduce(prev State, d Delta) State {
	next := prev

	if d.Conversation != nil {
		next.Conversation = d.Conversation
	}
	if d.TaskPlan != nil {
		next.TaskPlan = *d.TaskPlan
	}
	if d.Subqueries != nil {
		next.Subqueries = d.Subqueries
	}
	if d.Results != nil {
		next.Results = d.Results
	}
	if d.Findings != nil {
		next.Findings = d.Findings
	}
	if d.Report != nil {
		next.Report = *d.Report
	}
	if d.Stage != "" {
		next.Stage = d.Stage
	}
	if d.RetryCount != nil {
		next.RetryCount = *d.RetryCount
	}
	if d.ErrorDetail != nil {
		next.ErrorDetail = *d.ErrorDetail
	}

	return next
}

// StageOf exposes the routing key to the executor.
func StageOf(s State) string {
	return string(s.Stage)
}
