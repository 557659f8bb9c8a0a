package openai

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

func TestProvider_Generate_MissingKeyShortCircuits(t *testing.T) {
	// No server: the short circuit must happen before any network call.
	p := New(Config{Model: "gpt-4o"}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
	require.False(t, res.OK())
	assert.Equal(t, "Error: OpenAI API key not configured", res.Text)
	assert.Equal(t, types.ErrMissingCredential, res.Fault.Code)
}

func TestProvider_Generate_Success(t *testing.T) {
	var captured chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"generated text"}}],"model":"gpt-4o"}`))
	}))
	defer server.Close()

	p := New(Config{
		APIKey:      "sk-test",
		BaseURL:     server.URL,
		Model:       "gpt-4o",
		Temperature: 0.3,
		MaxTokens:   256,
	}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{
		Prompt:       "write a haiku",
		SystemPrompt: "you are a poet",
	})

	require.True(t, res.OK())
	assert.Equal(t, "generated text", res.Text)
	assert.Equal(t, "gpt-4o", res.Model)
	assert.Equal(t, "Bearer sk-test", auth)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, 0.3, captured.Temperature)
	assert.Equal(t, 256, captured.MaxTokens)
}

func TestProvider_Generate_NonOKStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   types.ErrorCode
		wantRetry  bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, types.ErrUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, types.ErrRateLimited, true},
		{"quota", http.StatusBadRequest, `{"error":{"message":"quota exceeded"}}`, types.ErrQuotaExceeded, false},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad param"}}`, types.ErrInvalidRequest, false},
		{"server error", http.StatusInternalServerError, `oops`, types.ErrUpstreamError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := New(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-4o"}, zap.NewNop())
			defer p.Close()

			res := p.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
			require.False(t, res.OK())
			assert.Contains(t, res.Text, "Error: OpenAI returned status")
			assert.Equal(t, tt.wantCode, res.Fault.Code)
			assert.Equal(t, tt.wantRetry, res.Fault.Retryable)
			assert.Equal(t, tt.status, res.Fault.HTTPStatus)
		})
	}
}

func TestProvider_Generate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := New(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-4o"}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
	require.False(t, res.OK())
	assert.Contains(t, res.Text, "empty response")
}

func TestProvider_Generate_NetworkFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := New(Config{APIKey: "sk-test", BaseURL: url, Model: "gpt-4o"}, zap.NewNop())
	defer p.Close()

	res := p.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"})
	require.False(t, res.OK())
	assert.Contains(t, res.Text, "Error communicating with OpenAI:")
}

func TestNew_Defaults(t *testing.T) {
	p := New(Config{}, nil)
	defer p.Close()
	assert.Equal(t, DefaultBaseURL, p.cfg.BaseURL)
	assert.Equal(t, "OpenAI", p.cfg.Label)
	assert.Equal(t, "openai", p.Name())
}
