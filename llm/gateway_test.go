package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/crewflow/types"
)

func TestResolveOverrides(t *testing.T) {
	cfg := types.LLMConfig{Temperature: 0.7, MaxTokens: 2000}

	assert.Equal(t, 0.7, ResolveTemperature(cfg, &GenerateRequest{}))
	assert.Equal(t, 2000, ResolveMaxTokens(cfg, &GenerateRequest{}))
	assert.Equal(t, 0.7, ResolveTemperature(cfg, nil))

	temp := 0.1
	tokens := 64
	req := &GenerateRequest{Temperature: &temp, MaxTokens: &tokens}
	assert.Equal(t, 0.1, ResolveTemperature(cfg, req))
	assert.Equal(t, 64, ResolveMaxTokens(cfg, req))

	zero := 0.0
	req = &GenerateRequest{Temperature: &zero}
	assert.Equal(t, 0.0, ResolveTemperature(cfg, req), "explicit zero override wins over config")
}

func TestGenerateResult_OK(t *testing.T) {
	ok := &GenerateResult{Text: "hello", Provider: "ollama"}
	assert.True(t, ok.OK())

	faulted := Faulted("openai", "Error: OpenAI API key not configured",
		types.NewError(types.ErrMissingCredential, "api key not configured"))
	assert.False(t, faulted.OK())
	assert.Equal(t, types.ErrMissingCredential, faulted.Fault.Code)
	assert.Contains(t, faulted.Text, "Error:")
}
