package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/researchgraph-go/graph/model"
)

type fakeClient struct {
	out      model.ChatOut
	err      error
	messages []model.Message
}

func (f *fakeClient) createCompletion(_ context.Context, messages []model.Message) (model.ChatOut, error) {
	f.messages = messages
	return f.out, f.err
}

func TestNewChatModel(t *testing.T) {
	t.Run("defaults model name", func(t *testing.T) {
		m := NewChatModel("key", "")
		if m.modelName != DefaultModel {
			t.Errorf("expected %s, got %s", DefaultModel, m.modelName)
		}
	})

	t.Run("keeps explicit model name", func(t *testing.T) {
		m := NewChatModel("key", "gpt-4o")
		if m.modelName != "gpt-4o" {
			t.Errorf("expected gpt-4o, got %s", m.modelName)
		}
	})
}

func TestChat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns client response", func(t *testing.T) {
		fake := &fakeClient{out: model.ChatOut{Text: "Paris", TotalTokens: 12}}
		m := &ChatModel{modelName: DefaultModel, client: fake}

		out, err := m.Chat(ctx, []model.Message{{Role: model.RoleUser, Content: "Capital of France?"}})
		if err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if out.Text != "Paris" || out.TotalTokens != 12 {
			t.Errorf("unexpected output: %+v", out)
		}
		if len(fake.messages) != 1 {
			t.Errorf("expected 1 message forwarded, got %d", len(fake.messages))
		}
	})

	t.Run("propagates client error", func(t *testing.T) {
		wantErr := errors.New("rate limited")
		m := &ChatModel{modelName: DefaultModel, client: &fakeClient{err: wantErr}}

		if _, err := m.Chat(ctx, nil); !errors.Is(err, wantErr) {
			t.Errorf("expected client error, got %v", err)
		}
	})

	t.Run("checks context before calling", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		fake := &fakeClient{out: model.ChatOut{Text: "never"}}
		m := &ChatModel{modelName: DefaultModel, client: fake}

		if _, err := m.Chat(cancelled, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if fake.messages != nil {
			t.Error("client must not be called with a cancelled context")
		}
	})
}

func TestConvertMessages(t *testing.T) {
	converted := convertMessages([]model.Message{
		{Role: model.RoleSystem, Content: "be brief"},
		{Role: model.RoleUser, Content: "question"},
		{Role: model.RoleAssistant, Content: "answer"},
	})

	if len(converted) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(converted))
	}
	if converted[0].OfSystem == nil {
		t.Error("expected system message union")
	}
	if converted[1].OfUser == nil {
		t.Error("expected user message union")
	}
	if converted[2].OfAssistant == nil {
		t.Error("expected assistant message union")
	}
}
