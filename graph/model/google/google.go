// Package google adapts Google's Gemini API to model.ChatModel.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/researchgraph-go/graph/model"
)

// DefaultModel is used when no model name is provided.
const DefaultModel = "gemini-2.5-flash"

// ChatModel implements model.ChatModel for Google's Gemini API.
//
// Gemini has no dedicated system role in this request shape; system
// messages are folded into the prompt parts ahead of the conversation.
//
// Example usage:
//
//	apiKey := os.Getenv("GOOGLE_API_KEY")
//	m := google.NewChatModel(apiKey, "")
//
//	out, err := m.Chat(ctx, []model.Message{
//	    {Role: model.RoleUser, Content: "List three renewable energy sources."},
//	})
type ChatModel struct {
	modelName string
	client    googleClient
}

// googleClient defines the interface for Gemini API operations.
// This allows for easy mocking in tests.
type googleClient interface {
	generateContent(ctx context.Context, messages []model.Message) (model.ChatOut, error)
}

// NewChatModel creates a new Google Gemini ChatModel.
//
// Parameters:
//   - apiKey: Google AI API key (get from https://aistudio.google.com)
//   - modelName: Model to use. Empty string uses DefaultModel.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = DefaultModel
	}

	return &ChatModel{
		modelName: modelName,
		client:    &defaultClient{apiKey: apiKey, modelName: modelName},
	}
}

// Chat implements the model.ChatModel interface.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	return m.client.generateContent(ctx, messages)
}

// defaultClient wraps the official generative-ai-go SDK. The SDK client
// holds network resources, so one is created per call and closed when done.
type defaultClient struct {
	apiKey    string
	modelName string
}

func (c *defaultClient) generateContent(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer func() { _ = client.Close() }()

	gm := client.GenerativeModel(c.modelName)

	parts := make([]genai.Part, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, genai.Text(msg.Content))
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.ChatOut{}, errors.New("Gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	out := model.ChatOut{Text: text.String()}
	if resp.UsageMetadata != nil {
		out.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return out, nil
}
