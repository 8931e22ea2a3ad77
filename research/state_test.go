package research

import (
	"testing"

	"github.com/dshills/researchgraph-go/graph/model"
)

func TestNewState(t *testing.T) {
	state := NewState("what is Go?", 2)

	if state.TaskQuery != "what is Go?" {
		t.Errorf("unexpected task query: %q", state.TaskQuery)
	}
	if state.Stage != StagePlanning {
		t.Errorf("expected planning stage, got %q", state.Stage)
	}
	if state.RetryCount != 0 || state.MaxRetries != 2 {
		t.Errorf("unexpected retry fields: %d/%d", state.RetryCount, state.MaxRetries)
	}
	if len(state.Conversation) != 1 || state.Conversation[0].Role != model.RoleUser {
		t.Errorf("expected conversation seeded with the user query: %+v", state.Conversation)
	}
	if state.Report != "" {
		t.Error("fresh state must not carry a report")
	}
}

func TestStageValid(t *testing.T) {
	for _, stage := range []Stage{
		StagePlanning, StageSearching, StageValidating,
		StageProcessing, StageGenerating, StageComplete, StageError,
	} {
		if !stage.Valid() {
			t.Errorf("stage %q should be valid", stage)
		}
	}
	if Stage("done").Valid() {
		t.Error("unknown stage should be invalid")
	}
	if Stage("").Valid() {
		t.Error("empty stage should be invalid")
	}
}

func TestResultFailed(t *testing.T) {
	if (Result{Query: "q", Payload: "p"}).Failed() {
		t.Error("result with payload should not be failed")
	}
	if !(Result{Query: "q", Err: "timeout"}).Failed() {
		t.Error("result with error should be failed")
	}
}

func TestReduce(t *testing.T) {
	t.Run("empty delta leaves state unchanged", func(t *testing.T) {
		prev := NewState("q", 1)
		prev.Results = []Result{{Query: "a", Payload: "x"}}

		next := Reduce(prev, Delta{})
		if next.Stage != prev.Stage || len(next.Results) != 1 || next.RetryCount != prev.RetryCount {
			t.Errorf("empty delta changed state: %+v", next)
		}
	})

	t.Run("set fields overwrite", func(t *testing.T) {
		prev := NewState("q", 1)

		next := Reduce(prev, Delta{
			TaskPlan:   strPtr("the plan"),
			Subqueries: []string{"s1", "s2"},
			Stage:      StageSearching,
			RetryCount: intPtr(1),
		})

		if next.TaskPlan != "the plan" {
			t.Errorf("expected plan overwrite, got %q", next.TaskPlan)
		}
		if len(next.Subqueries) != 2 {
			t.Errorf("expected subqueries replaced, got %v", next.Subqueries)
		}
		if next.Stage != StageSearching || next.RetryCount != 1 {
			t.Errorf("unexpected stage/retry: %q/%d", next.Stage, next.RetryCount)
		}
	})

	t.Run("pointer scalar can clear to zero", func(t *testing.T) {
		prev := NewState("q", 1)
		prev.ErrorDetail = "something broke"

		next := Reduce(prev, Delta{ErrorDetail: strPtr("")})
		if next.ErrorDetail != "" {
			t.Errorf("expected cleared error detail, got %q", next.ErrorDetail)
		}
	})

	t.Run("slices replace, never merge", func(t *testing.T) {
		prev := NewState("q", 1)
		prev.Results = []Result{{Query: "old"}}

		next := Reduce(prev, Delta{Results: []Result{{Query: "new1"}, {Query: "new2"}}})
		if len(next.Results) != 2 || next.Results[0].Query != "new1" {
			t.Errorf("expected wholesale replacement, got %v", next.Results)
		}
	})

	t.Run("does not mutate previous state", func(t *testing.T) {
		prev := NewState("q", 1)
		prev.Results = []Result{{Query: "a"}}

		_ = Reduce(prev, Delta{
			Stage:   StageComplete,
			Results: []Result{{Query: "b"}},
			Report:  strPtr("done"),
		})

		if prev.Stage != StagePlanning || prev.Report != "" || prev.Results[0].Query != "a" {
			t.Errorf("previous state mutated: %+v", prev)
		}
	})
}
