package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgent_LLMConfig_Defaults(t *testing.T) {
	a := &Agent{
		ID:          "a1",
		Name:        "Researcher",
		LLMProvider: ProviderOllama,
		ModelName:   "llama3",
	}
	cfg := a.LLMConfig()
	require.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
}

func TestAgent_LLMConfig_Explicit(t *testing.T) {
	temp := 0.2
	a := &Agent{
		ID:          "a2",
		LLMProvider: ProviderAnthropic,
		ModelName:   "claude-3-5-sonnet-20241022",
		Temperature: &temp,
		MaxTokens:   512,
	}
	cfg := a.LLMConfig()
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 512, cfg.MaxTokens)
}

func TestAgent_LLMConfig_ZeroTemperature(t *testing.T) {
	// An explicit temperature of 0 is a deterministic-sampling request and
	// must survive, not get rewritten to the default.
	temp := 0.0
	a := &Agent{
		ID:          "a3",
		LLMProvider: ProviderOpenAI,
		ModelName:   "gpt-4o",
		Temperature: &temp,
	}
	cfg := a.LLMConfig()
	assert.Equal(t, 0.0, cfg.Temperature)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
}
