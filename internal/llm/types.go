// Package llm is the single network-facing adapter around the external
// language model. It speaks the chat-completions contract and normalizes
// every failure into one of three error kinds; retry policy belongs to
// callers.
package llm

import "time"

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultAPIKeyEnv = "OPENAI_API_KEY"
	defaultTimeout   = 15 * time.Second
)

// Message roles accepted by the chat-completions contract.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the prompt sent upstream.
type Message struct {
	Role    string
	Content string
}

// Config is the model client configuration.
type Config struct {
	Model     string
	BaseURL   string
	APIKey    string
	APIKeyEnv string
	Timeout   time.Duration
}

// Options tune a single completion call. Zero values fall back to the
// client configuration.
type Options struct {
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant returns an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }
