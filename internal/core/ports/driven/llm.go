package driven

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatService provides language model text generation. The engine consumes
// it in two roles: transforming parent text at index time (summaries,
// hypothetical questions) and synthesizing a final answer at query time.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4.1)
//   - Anthropic (Claude)
//   - Ollama (local models)
type ChatService interface {
	// Chat sends the messages to the model and returns its text output.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string
}
