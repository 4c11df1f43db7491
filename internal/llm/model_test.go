package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsonja88/ICS499-Bears/internal/config"
)

func TestNewModelUnsupportedProvider(t *testing.T) {
	_, err := NewModel(context.Background(), config.Config{LLMProvider: "carrier-pigeon"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewModelMissingKeys(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{"openai without key", config.ProviderOpenAI},
		{"anthropic without key", config.ProviderAnthropic},
		{"googleai without key", config.ProviderGoogleAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{LLMProvider: tt.provider, LLMModel: "m"}
			_, err := NewModel(context.Background(), cfg, nil)
			require.Error(t, err)
		})
	}
}

func TestNewModelOllama(t *testing.T) {
	cfg := config.Config{
		LLMProvider: config.ProviderOllama,
		LLMModel:    "llama3",
		OllamaHost:  "http://localhost:11434",
	}

	// Constructing the client needs no running server
	m, err := NewModel(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "llama3", m.Model())
}
