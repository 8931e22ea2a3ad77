package graph

import (
	"context"
	"errors"
	"testing"
)

type testState struct {
	Stage string
	Count int
}

type testDelta struct {
	Stage string
	Add   int
}

func testReduce(prev testState, d testDelta) testState {
	next := prev
	if d.Stage != "" {
		next.Stage = d.Stage
	}
	next.Count += d.Add
	return next
}

func testStageOf(s testState) string {
	return s.Stage
}

func noopStep(_ context.Context, _ testState) (testDelta, error) {
	return testDelta{}, nil
}

func TestAddStep(t *testing.T) {
	t.Run("registers step", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddStep("a", noopStep); err != nil {
			t.Fatalf("AddStep failed: %v", err)
		}
		if _, ok := g.step("a"); !ok {
			t.Error("step a not registered")
		}
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddStep("a", noopStep); err != nil {
			t.Fatalf("first AddStep failed: %v", err)
		}

		err := g.AddStep("a", noopStep)
		if err == nil {
			t.Fatal("expected error for duplicate step id")
		}
		var dup *DuplicateStepError
		if !errors.As(err, &dup) {
			t.Fatalf("expected DuplicateStepError, got %T: %v", err, err)
		}
		if dup.ID != "a" {
			t.Errorf("expected duplicate id a, got %q", dup.ID)
		}
	})

	t.Run("rejects empty id", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddStep("", noopStep); err == nil {
			t.Error("expected error for empty step id")
		}
	})

	t.Run("rejects nil function", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddStep("a", nil); err == nil {
			t.Error("expected error for nil step function")
		}
	})
}

func TestSetEntry(t *testing.T) {
	g := New[testState, testDelta]()
	if err := g.AddStep("a", noopStep); err != nil {
		t.Fatalf("AddStep failed: %v", err)
	}

	if err := g.SetEntry("missing"); err == nil {
		t.Error("expected error for unknown entry step")
	}
	if err := g.SetEntry("a"); err != nil {
		t.Errorf("SetEntry failed: %v", err)
	}
}

func TestBindStage(t *testing.T) {
	g := New[testState, testDelta]()
	if err := g.AddStep("a", noopStep); err != nil {
		t.Fatalf("AddStep failed: %v", err)
	}

	t.Run("validates step at declaration", func(t *testing.T) {
		if err := g.BindStage("working", "missing"); err == nil {
			t.Error("expected error binding stage to unknown step")
		}
	})

	t.Run("accepts existing step", func(t *testing.T) {
		if err := g.BindStage("working", "a"); err != nil {
			t.Errorf("BindStage failed: %v", err)
		}
	})

	t.Run("accepts End for terminal stage", func(t *testing.T) {
		if err := g.BindStage("done", End); err != nil {
			t.Errorf("BindStage to End failed: %v", err)
		}
	})
}

func TestStepForStage(t *testing.T) {
	t.Run("no bindings falls back to entry", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddStep("a", noopStep); err != nil {
			t.Fatalf("AddStep failed: %v", err)
		}
		if err := g.SetEntry("a"); err != nil {
			t.Fatalf("SetEntry failed: %v", err)
		}

		id, err := g.stepForStage("anything")
		if err != nil {
			t.Fatalf("stepForStage failed: %v", err)
		}
		if id != "a" {
			t.Errorf("expected entry step a, got %q", id)
		}
	})

	t.Run("no bindings and no entry fails", func(t *testing.T) {
		g := New[testState, testDelta]()
		if _, err := g.stepForStage("anything"); !errors.Is(err, ErrNoEntry) {
			t.Errorf("expected ErrNoEntry, got %v", err)
		}
	})

	t.Run("bindings are strict", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddStep("a", noopStep); err != nil {
			t.Fatalf("AddStep failed: %v", err)
		}
		if err := g.BindStage("working", "a"); err != nil {
			t.Fatalf("BindStage failed: %v", err)
		}

		if id, err := g.stepForStage("working"); err != nil || id != "a" {
			t.Errorf("expected (a, nil), got (%q, %v)", id, err)
		}

		_, err := g.stepForStage("unbound")
		var unbound *UnboundStageError
		if !errors.As(err, &unbound) {
			t.Fatalf("expected UnboundStageError, got %T: %v", err, err)
		}
		if unbound.Stage != "unbound" {
			t.Errorf("expected stage unbound, got %q", unbound.Stage)
		}
	})
}

func TestNext(t *testing.T) {
	t.Run("static edge", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddEdge("a", "b"); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}

		next, err := g.next("a", testState{})
		if err != nil || next != "b" {
			t.Errorf("expected (b, nil), got (%q, %v)", next, err)
		}
	})

	t.Run("no outgoing edge is terminal", func(t *testing.T) {
		g := New[testState, testDelta]()
		next, err := g.next("a", testState{})
		if err != nil || next != End {
			t.Errorf("expected (End, nil), got (%q, %v)", next, err)
		}
	})

	t.Run("conditional edge routes by state", func(t *testing.T) {
		g := New[testState, testDelta]()
		router := func(s testState) string {
			if s.Count > 0 {
				return "more"
			}
			return "stop"
		}
		err := g.AddConditionalEdge("a", router, map[string]string{
			"more": "b",
			"stop": End,
		})
		if err != nil {
			t.Fatalf("AddConditionalEdge failed: %v", err)
		}

		if next, err := g.next("a", testState{Count: 1}); err != nil || next != "b" {
			t.Errorf("expected (b, nil), got (%q, %v)", next, err)
		}
		if next, err := g.next("a", testState{}); err != nil || next != End {
			t.Errorf("expected (End, nil), got (%q, %v)", next, err)
		}
	})

	t.Run("conditional takes precedence over static", func(t *testing.T) {
		g := New[testState, testDelta]()
		if err := g.AddEdge("a", "static"); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
		err := g.AddConditionalEdge("a", func(testState) string { return "x" },
			map[string]string{"x": "routed"})
		if err != nil {
			t.Fatalf("AddConditionalEdge failed: %v", err)
		}

		next, err := g.next("a", testState{})
		if err != nil || next != "routed" {
			t.Errorf("expected (routed, nil), got (%q, %v)", next, err)
		}
	})

	t.Run("unmapped label fails with RoutingError", func(t *testing.T) {
		g := New[testState, testDelta]()
		err := g.AddConditionalEdge("a", func(testState) string { return "surprise" },
			map[string]string{"expected": "b"})
		if err != nil {
			t.Fatalf("AddConditionalEdge failed: %v", err)
		}

		_, err = g.next("a", testState{})
		var routing *RoutingError
		if !errors.As(err, &routing) {
			t.Fatalf("expected RoutingError, got %T: %v", err, err)
		}
		if routing.From != "a" || routing.Label != "surprise" {
			t.Errorf("unexpected RoutingError fields: %+v", routing)
		}
	})
}
