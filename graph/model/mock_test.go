package model

import (
	"context"
	"errors"
	"testing"
)

func TestMockChatModel(t *testing.T) {
	ctx := context.Background()

	t.Run("returns responses in sequence and repeats last", func(t *testing.T) {
		mock := &MockChatModel{
			Responses: []ChatOut{
				{Text: "first"},
				{Text: "second"},
			},
		}

		for _, want := range []string{"first", "second", "second"} {
			out, err := mock.Chat(ctx, []Message{{Role: RoleUser, Content: "hi"}})
			if err != nil {
				t.Fatalf("Chat failed: %v", err)
			}
			if out.Text != want {
				t.Errorf("expected %q, got %q", want, out.Text)
			}
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		wantErr := errors.New("API error")
		mock := &MockChatModel{Err: wantErr}

		_, err := mock.Chat(ctx, nil)
		if !errors.Is(err, wantErr) {
			t.Errorf("expected configured error, got %v", err)
		}
		if mock.CallCount() != 1 {
			t.Error("failed calls must still be recorded")
		}
	})

	t.Run("records call history", func(t *testing.T) {
		mock := &MockChatModel{Responses: []ChatOut{{Text: "ok"}}}

		messages := []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "question"},
		}
		if _, err := mock.Chat(ctx, messages); err != nil {
			t.Fatalf("Chat failed: %v", err)
		}

		if len(mock.Calls) != 1 {
			t.Fatalf("expected 1 recorded call, got %d", len(mock.Calls))
		}
		if len(mock.Calls[0].Messages) != 2 || mock.Calls[0].Messages[1].Content != "question" {
			t.Errorf("unexpected recorded messages: %+v", mock.Calls[0].Messages)
		}
	})

	t.Run("reset clears history and sequence", func(t *testing.T) {
		mock := &MockChatModel{Responses: []ChatOut{{Text: "a"}, {Text: "b"}}}

		if _, err := mock.Chat(ctx, nil); err != nil {
			t.Fatal(err)
		}
		mock.Reset()

		if mock.CallCount() != 0 {
			t.Error("expected empty call history after reset")
		}
		out, err := mock.Chat(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if out.Text != "a" {
			t.Errorf("expected sequence restart, got %q", out.Text)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		mock := &MockChatModel{Responses: []ChatOut{{Text: "never"}}}
		if _, err := mock.Chat(cancelled, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
