package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/olsonja88/ICS499-Bears/internal/auth"
)

func textOf(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	require.Len(t, m.Parts, 1)
	part, ok := m.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestAssemblePromptOrder(t *testing.T) {
	history := []Turn{
		{Speaker: SpeakerUser, Text: "What is tango?"},
		{Speaker: SpeakerAssistant, Text: "A partner dance from Argentina."},
	}

	messages := AssemblePrompt(auth.RoleViewer, history, "Where did it originate?")

	require.Len(t, messages, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, messages[1].Role)
	assert.Equal(t, "What is tango?", textOf(t, messages[1]))
	assert.Equal(t, llms.ChatMessageTypeAI, messages[2].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, messages[3].Role)
	assert.Equal(t, "Where did it originate?", textOf(t, messages[3]))
}

func TestAssemblePromptNoHistory(t *testing.T) {
	messages := AssemblePrompt(auth.RoleViewer, nil, "hi")
	require.Len(t, messages, 2)
}

func TestSystemInstructionAdmin(t *testing.T) {
	system := textOf(t, AssemblePrompt(auth.RoleAdmin, nil, "add salsa")[0])

	assert.Contains(t, system, RefusalOffTopic)
	assert.Contains(t, system, "administrator")
	assert.Contains(t, system, "INSERT OR IGNORE INTO categories")
	assert.Contains(t, system, "INSERT OR IGNORE INTO countries")
	assert.Contains(t, system, "INSERT INTO dances")
	assert.NotContains(t, system, "Never generate SQL")
}

func TestSystemInstructionViewer(t *testing.T) {
	system := textOf(t, AssemblePrompt(auth.RoleViewer, nil, "add salsa")[0])

	assert.Contains(t, system, RefusalOffTopic)
	assert.Contains(t, system, RefusalMutation)
	assert.Contains(t, system, "Never generate SQL")
	assert.NotContains(t, system, "INSERT INTO dances")
}
