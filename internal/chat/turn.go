// Package chat implements the conversation pipeline: prompt assembly,
// session history, mutation gating, and reply composition.
package chat

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one message in a conversation. The JSON field names match the
// wire contract of the chat clients.
type Turn struct {
	Speaker Speaker `json:"role"`
	Text    string  `json:"content"`
}

// Greeting is the assistant's opening line, restored when a conversation
// is reset.
const Greeting = "Ask me questions related to dances!"
