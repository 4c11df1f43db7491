package chat

import (
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/olsonja88/ICS499-Bears/internal/auth"
)

// Fixed sentences the system instruction obliges the provider to use.
const (
	// RefusalOffTopic is the reply for anything not dance-related.
	RefusalOffTopic = "I can only answer dance-related questions."

	// RefusalMutation is the reply when a non-admin asks to add a dance.
	// It is also what the server answers if a non-admin reply somehow
	// contains executable SQL anyway.
	RefusalMutation = "Only administrators can add dances to the collection."
)

// AssemblePrompt builds the ordered message list for the completion
// provider: one system instruction block, the accumulated history mapped
// to provider-native roles, then the new user turn.
func AssemblePrompt(role auth.Role, history []Turn, userMessage string) []llms.MessageContent {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction(role)),
	}

	for _, turn := range history {
		switch turn.Speaker {
		case SpeakerUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, turn.Text))
		case SpeakerAssistant:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, turn.Text))
		}
	}

	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userMessage))
}

// systemInstruction encodes the three contracts the provider must obey:
// the topic restriction, the role-conditioned permission clause, and the
// output-format contract that makes the mutation extractor tractable.
func systemInstruction(role auth.Role) string {
	sections := []string{
		`You are an AI assistant specializing in dance. You will ONLY answer questions related to:
- Dance styles and techniques
- Choreography and performances
- Cultural significance of dance
- Famous dancers and dance history
- Music used in dance
If a user asks something unrelated, respond with: "` + RefusalOffTopic + `"`,
	}

	if role == auth.RoleAdmin {
		sections = append(sections, `The current user is an administrator and may add new dances to the database.
When the user asks to add a dance, include exactly one fenced code block tagged sql in your reply, containing in this order:
1. INSERT OR IGNORE INTO categories (name) VALUES ('<category>');
2. INSERT OR IGNORE INTO countries (name, code) VALUES ('<country>', '<code>');
3. INSERT INTO dances (title, category_id, country_id) VALUES ('<title>', (SELECT id FROM categories WHERE name='<category>'), (SELECT id FROM countries WHERE name='<country>'));
Use single quotes for string literals and double any single quote inside them. Emit no other SQL of any kind.`)
	} else {
		sections = append(sections, `The current user is not an administrator. If the user asks to add, change, or delete a dance, respond with: "`+
			RefusalMutation+`" Never generate SQL.`)
	}

	return strings.Join(sections, "\n\n")
}
