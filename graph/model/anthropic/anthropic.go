// Package anthropic adapts Anthropic's Messages API to model.ChatModel.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/researchgraph-go/graph/model"
)

// DefaultModel is used when no model name is provided.
const DefaultModel = "claude-sonnet-4-5"

// defaultMaxTokens bounds response length; the Messages API requires an
// explicit value.
const defaultMaxTokens = 4096

// ChatModel implements model.ChatModel for Anthropic's API.
//
// Anthropic takes the system prompt as a dedicated request field rather
// than as a message, so system messages are extracted from the
// conversation and concatenated.
//
// Example usage:
//
//	apiKey := os.Getenv("ANTHROPIC_API_KEY")
//	m := anthropic.NewChatModel(apiKey, "")
//
//	out, err := m.Chat(ctx, []model.Message{
//	    {Role: model.RoleUser, Content: "Summarize these findings."},
//	})
type ChatModel struct {
	modelName string
	client    anthropicClient
}

// anthropicClient defines the interface for Anthropic API operations.
// This allows for easy mocking in tests.
type anthropicClient interface {
	createMessage(ctx context.Context, messages []model.Message) (model.ChatOut, error)
}

// NewChatModel creates a new Anthropic ChatModel.
//
// Parameters:
//   - apiKey: Anthropic API key (get from https://console.anthropic.com)
//   - modelName: Model to use. Empty string uses DefaultModel.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = DefaultModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &ChatModel{
		modelName: modelName,
		client:    &defaultClient{client: &client, modelName: modelName},
	}
}

// Chat implements the model.ChatModel interface.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	return m.client.createMessage(ctx, messages)
}

// defaultClient wraps the official anthropic-sdk-go SDK.
type defaultClient struct {
	client    *anthropic.Client
	modelName string
}

func (c *defaultClient) createMessage(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	system, rest := extractSystemPrompt(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: defaultMaxTokens,
		Messages:  convertMessages(rest),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("Anthropic API error: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return model.ChatOut{}, errors.New("Anthropic returned no text content")
	}

	return model.ChatOut{
		Text:        text.String(),
		TotalTokens: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}

// extractSystemPrompt pulls system messages out of the conversation.
// Multiple system messages are concatenated with blank lines.
func extractSystemPrompt(messages []model.Message) (string, []model.Message) {
	var system []string
	rest := make([]model.Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		rest = append(rest, msg)
	}

	return strings.Join(system, "\n\n"), rest
}

func convertMessages(messages []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == model.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
