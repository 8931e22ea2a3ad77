package emit

// Standard event messages emitted by the Executor.
const (
	// MsgStepStart marks the beginning of a step execution.
	MsgStepStart = "step_start"

	// MsgStepEnd marks a completed step, after its checkpoint is persisted.
	MsgStepEnd = "step_end"

	// MsgRoutingDecision records the next step chosen after a step completes.
	MsgRoutingDecision = "routing_decision"

	// MsgError records a fatal step failure.
	MsgError = "error"
)

// Event represents an observability event emitted during workflow execution.
//
// Events provide insight into a thread's progression: step start/end,
// routing decisions, checkpoint writes, and errors. They are delivered to an
// Emitter which can log them, convert them to trace spans, or discard them.
type Event struct {
	// ThreadID identifies the workflow thread that emitted this event.
	ThreadID string

	// Step is the sequential step number within the thread (1-indexed).
	Step int

	// StepID identifies the step that emitted this event.
	StepID string

	// Msg names the event, normally one of the Msg* constants.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "duration_ms": step execution duration in milliseconds
	//   - "stage": the stage marker after the delta merge
	//   - "next": the step id chosen by routing
	//   - "error": error details
	Meta map[string]interface{}
}
