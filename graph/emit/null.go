package emit

// NullEmitter implements Emitter by discarding all events.
//
// Use it when observability output is unwanted: quiet CLI runs, benchmarks,
// tests that don't assert on events.
type NullEmitter struct{}

// NewNullEmitter creates an emitter that discards everything. It is safe for
// concurrent use and has zero overhead.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
