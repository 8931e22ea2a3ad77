// Package model provides LLM integration adapters.
package model

import "context"

// ChatModel defines the interface for LLM chat providers.
//
// This interface abstracts the differences between various LLM providers
// (OpenAI, Anthropic, Google, local models), providing a unified API for
// chat-based interactions.
//
// Implementations should:
//   - Handle provider-specific authentication
//   - Convert the standard Message format to the provider's wire format
//   - Parse provider responses back to the standard ChatOut format
//   - Respect context cancellation and timeouts
//
// Example usage:
//
//	m := openai.NewChatModel(apiKey, "gpt-4o-mini")
//	messages := []model.Message{
//	    {Role: model.RoleUser, Content: "What is the capital of France?"},
//	}
//
//	out, err := m.Chat(ctx, messages)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out.Text) // "The capital of France is Paris."
type ChatModel interface {
	// Chat sends the conversation to the LLM and returns its response.
	//
	// Returns provider errors, network errors, or context cancellation
	// unchanged; callers decide whether a failure is fatal.
	Chat(ctx context.Context, messages []Message) (ChatOut, error)
}

// Message represents a single message in an LLM conversation.
//
// Messages follow the common chat format used by OpenAI, Anthropic, Google,
// and other providers:
//   - System message (optional): sets context and behavior
//   - User messages: input or questions
//   - Assistant messages: LLM responses
//
// JSON tags let conversations round-trip through checkpoint stores.
type Message struct {
	// Role identifies the message sender. Use the Role* constants.
	Role string `json:"role"`

	// Content contains the message text.
	Content string `json:"content"`
}

// Standard role constants for LLM conversations.
// These align with the conventions used by major LLM providers.
const (
	// RoleSystem indicates a system message that sets context or instructions.
	RoleSystem = "system"

	// RoleUser indicates a message from the human user.
	RoleUser = "user"

	// RoleAssistant indicates a response generated by the LLM.
	RoleAssistant = "assistant"
)

// ChatOut represents the output from an LLM chat completion.
type ChatOut struct {
	// Text contains the LLM's generated response.
	Text string

	// TotalTokens is the combined prompt and completion token count as
	// reported by the provider, or 0 when the provider omits usage data.
	TotalTokens int
}
