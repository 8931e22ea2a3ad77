// Package openai adapts OpenAI's chat completion API to model.ChatModel.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dshills/researchgraph-go/graph/model"
)

// DefaultModel is used when no model name is provided.
const DefaultModel = "gpt-4o-mini"

// ChatModel implements model.ChatModel for OpenAI's API.
//
// Example usage:
//
//	apiKey := os.Getenv("OPENAI_API_KEY")
//	m := openai.NewChatModel(apiKey, "gpt-4o-mini")
//
//	out, err := m.Chat(ctx, []model.Message{
//	    {Role: model.RoleUser, Content: "What is the capital of France?"},
//	})
type ChatModel struct {
	modelName string
	client    openaiClient
}

// openaiClient defines the interface for OpenAI API operations.
// This allows for easy mocking in tests.
type openaiClient interface {
	createCompletion(ctx context.Context, messages []model.Message) (model.ChatOut, error)
}

// Option customizes a ChatModel.
type Option func(*config)

type config struct {
	baseURL string
}

// WithBaseURL points the client at an OpenAI-compatible endpoint, for
// example a local inference server.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// NewChatModel creates a new OpenAI ChatModel.
//
// Parameters:
//   - apiKey: OpenAI API key (get from https://platform.openai.com/api-keys)
//   - modelName: Model to use (e.g., "gpt-4o", "gpt-4o-mini"). Empty string
//     uses DefaultModel.
func NewChatModel(apiKey, modelName string, opts ...Option) *ChatModel {
	if modelName == "" {
		modelName = DefaultModel
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

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

	return m.client.createCompletion(ctx, messages)
}

// defaultClient wraps the official openai-go SDK.
type defaultClient struct {
	client    *openai.Client
	modelName string
}

func (c *defaultClient) createCompletion(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.modelName),
		Messages: convertMessages(messages),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return model.ChatOut{}, errors.New("OpenAI returned no response choices")
	}

	return model.ChatOut{
		Text:        completion.Choices[0].Message.Content,
		TotalTokens: int(completion.Usage.TotalTokens),
	}, nil
}

// convertMessages maps the standard message format to the SDK's
// discriminated union types.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			})
		case model.RoleAssistant:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			})
		default:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			})
		}
	}
	return out
}
