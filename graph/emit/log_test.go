package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)

	emitter.Emit(Event{
		ThreadID: "run-001",
		Step:     2,
		StepID:   "search",
		Msg:      MsgStepEnd,
		Meta:     map[string]interface{}{"stage": "validating"},
	})

	out := buf.String()
	if !strings.HasPrefix(out, "[step_end] thread=run-001 step=2 stepID=search") {
		t.Errorf("unexpected text output: %q", out)
	}
	if !strings.Contains(out, `"stage":"validating"`) {
		t.Errorf("expected meta in output: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("expected trailing newline")
	}
}

func TestLogEmitterTextWithoutMeta(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)

	emitter.Emit(Event{ThreadID: "t", Step: 1, StepID: "plan", Msg: MsgStepStart})

	if got := buf.String(); got != "[step_start] thread=t step=1 stepID=plan\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestLogEmitterJSON(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)

	emitter.Emit(Event{
		ThreadID: "run-001",
		Step:     3,
		StepID:   "validate",
		Msg:      MsgRoutingDecision,
		Meta:     map[string]interface{}{"next": "process"},
	})

	var decoded struct {
		ThreadID string                 `json:"threadID"`
		Step     int                    `json:"step"`
		StepID   string                 `json:"stepID"`
		Msg      string                 `json:"msg"`
		Meta     map[string]interface{} `json:"meta"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if decoded.ThreadID != "run-001" || decoded.Step != 3 || decoded.StepID != "validate" {
		t.Errorf("unexpected decoded event: %+v", decoded)
	}
	if decoded.Msg != "routing_decision" {
		t.Errorf("expected msg routing_decision, got %q", decoded.Msg)
	}
	if decoded.Meta["next"] != "process" {
		t.Errorf("expected meta next=process, got %v", decoded.Meta)
	}
}

func TestNullEmitter(t *testing.T) {
	// Must be callable without side effects or panics.
	emitter := NewNullEmitter()
	emitter.Emit(Event{ThreadID: "t", Msg: MsgError})
}
