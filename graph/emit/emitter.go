// Package emit provides pluggable observability for workflow execution.
package emit

// Emitter receives observability events from workflow execution.
//
// Implementations should be:
//   - Non-blocking: avoid slowing down the execution loop
//   - Thread-safe: distinct threads may emit concurrently
//   - Resilient: a failing backend must not crash the workflow
type Emitter interface {
	// Emit delivers one event to the configured backend.
	// Emit must not panic; internal errors should be swallowed or logged.
	Emit(event Event)
}
