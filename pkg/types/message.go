// Package types holds the message and model types shared by the LLM layer
// and the extraction client.
package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat message exchanged with an LLM provider.
type Message struct {
	Role    MessageRole
	Content string
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the model behind a provider.
type ModelInfo struct {
	Provider  string
	Name      string
	MaxTokens int
	Metadata  map[string]interface{}
}

// CompletionOptions tunes a single completion request.
type CompletionOptions struct {
	// MaxOutputTokens caps the response length. Zero leaves it to the provider.
	MaxOutputTokens int
	// Temperature is sent only when non-nil.
	Temperature *float64
}
