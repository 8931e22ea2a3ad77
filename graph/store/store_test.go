package store

import (
	"context"
	"errors"
	"os"
	"testing"
)

func testMySQLDSN() string {
	return os.Getenv("RESEARCHGRAPH_MYSQL_DSN")
}

type payload struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// storeUnderTest runs the Store contract against any implementation.
func storeUnderTest(t *testing.T, st Store[payload]) {
	t.Helper()
	ctx := context.Background()

	t.Run("latest on unknown thread returns ErrNotFound", func(t *testing.T) {
		if _, err := st.Latest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("history on unknown thread returns ErrNotFound", func(t *testing.T) {
		if _, err := st.History(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("put then latest round-trips", func(t *testing.T) {
		if err := st.Put(ctx, "t1", 1, "plan", payload{Stage: "searching", Count: 1}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		snap, err := st.Latest(ctx, "t1")
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if snap.Step != 1 || snap.StepID != "plan" {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
		if snap.State.Stage != "searching" || snap.State.Count != 1 {
			t.Errorf("unexpected state: %+v", snap.State)
		}
	})

	t.Run("latest tracks highest step", func(t *testing.T) {
		if err := st.Put(ctx, "t1", 2, "search", payload{Stage: "validating", Count: 2}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := st.Put(ctx, "t1", 3, "validate", payload{Stage: "processing", Count: 3}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		snap, err := st.Latest(ctx, "t1")
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if snap.Step != 3 || snap.StepID != "validate" {
			t.Errorf("expected step 3, got %+v", snap)
		}
	})

	t.Run("put replaces on same step", func(t *testing.T) {
		if err := st.Put(ctx, "t1", 3, "validate", payload{Stage: "error", Count: 30}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		history, err := st.History(ctx, "t1")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("replace must not grow history: got %d entries", len(history))
		}
		if history[2].State.Count != 30 {
			t.Errorf("expected replaced state, got %+v", history[2].State)
		}
	})

	t.Run("history is ordered by step", func(t *testing.T) {
		history, err := st.History(ctx, "t1")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		for i, snap := range history {
			if snap.Step != i+1 {
				t.Errorf("history[%d]: expected step %d, got %d", i, i+1, snap.Step)
			}
		}
	})

	t.Run("threads are independent", func(t *testing.T) {
		if err := st.Put(ctx, "t2", 1, "plan", payload{Stage: "searching"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		h1, err := st.History(ctx, "t1")
		if err != nil {
			t.Fatalf("History t1 failed: %v", err)
		}
		h2, err := st.History(ctx, "t2")
		if err != nil {
			t.Fatalf("History t2 failed: %v", err)
		}
		if len(h1) != 3 || len(h2) != 1 {
			t.Errorf("expected 3 and 1 entries, got %d and %d", len(h1), len(h2))
		}
	})
}

func TestMemStore(t *testing.T) {
	storeUnderTest(t, NewMemStore[payload]())
}

func TestSQLiteStore(t *testing.T) {
	st, err := NewSQLiteStore[payload](":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = st.Close() }()

	storeUnderTest(t, st)

	t.Run("closed store rejects operations", func(t *testing.T) {
		closed, err := NewSQLiteStore[payload](":memory:")
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		if err := closed.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := closed.Put(context.Background(), "t", 1, "plan", payload{}); err == nil {
			t.Error("expected error on closed store")
		}
	})
}

func TestMySQLStore(t *testing.T) {
	// Requires a live MySQL instance; covered by the shared contract when a
	// DSN is provided.
	dsn := testMySQLDSN()
	if dsn == "" {
		t.Skip("RESEARCHGRAPH_MYSQL_DSN not set")
	}

	st, err := NewMySQLStore[payload](dsn)
	if err != nil {
		t.Fatalf("NewMySQLStore failed: %v", err)
	}
	defer func() { _ = st.Close() }()

	storeUnderTest(t, st)
}
