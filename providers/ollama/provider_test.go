package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/crewflow/llm"
	"github.com/BaSui01/crewflow/types"
)

func TestProvider_Generate_Success(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"hello from llama"}}`))
	}))
	defer server.Close()

	p := New(Config{
		BaseURL:     server.URL,
		Model:       "llama3",
		Temperature: 0.5,
		MaxTokens:   128,
	}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{
		Prompt:       "say hello",
		SystemPrompt: "you are terse",
	})

	require.True(t, res.OK())
	assert.Equal(t, "hello from llama", res.Text)
	assert.Equal(t, "ollama", res.Provider)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "you are terse", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, 0.5, captured.Options.Temperature)
	assert.Equal(t, 128, captured.Options.NumPredict)
	assert.False(t, captured.Stream)
}

func TestProvider_Generate_NoSystemPrompt(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"message":{"content":"ok"}}`))
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Model: "llama3"}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
	require.True(t, res.OK())
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
}

func TestProvider_Generate_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Model: "missing"}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
	require.False(t, res.OK())
	assert.Equal(t, "Error: Ollama returned status 404", res.Text)
	assert.Equal(t, types.ErrUpstreamError, res.Fault.Code)
	assert.Equal(t, 404, res.Fault.HTTPStatus)
}

func TestProvider_Generate_Unreachable(t *testing.T) {
	// A server that is immediately closed yields a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := New(Config{BaseURL: url, Model: "llama3"}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
	require.False(t, res.OK())
	assert.Contains(t, res.Text, "Error communicating with Ollama:")
	assert.Equal(t, types.ErrUpstreamError, res.Fault.Code)
	assert.True(t, res.Fault.Retryable)
}

func TestNew_Defaults(t *testing.T) {
	p := New(Config{}, nil)
	defer p.Close()
	assert.Equal(t, DefaultBaseURL, p.cfg.BaseURL)
	assert.Equal(t, "ollama", p.Name())
}
