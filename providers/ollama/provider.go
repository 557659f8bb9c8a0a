// Package ollama adapts a local-network Ollama server to the uniform
// generation capability.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/crewflow/llm"
	"github.com/BaSui01/crewflow/types"
)

// DefaultBaseURL is the conventional local Ollama address.
const DefaultBaseURL = "http://localhost:11434"

// Config configures the Ollama provider for one invocation. Temperature and
// MaxTokens arrive already resolved (request overrides applied).
type Config struct {
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Model       string        `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Provider implements llm.Generator for Ollama's /api/chat endpoint.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates an Ollama provider instance with its own HTTP client.
func New(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = llm.DefaultRequestTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *Provider) Name() string { return "ollama" }

// Close releases the provider's network resources.
func (p *Provider) Close() { p.client.CloseIdleConnections() }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Options  chatOptions   `json:"options"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Generate performs one non-streaming chat call. Network faults and
// non-success statuses come back as error strings in the result, never as
// errors.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) *llm.GenerateResult {
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:    p.cfg.Model,
		Messages: messages,
		Options: chatOptions{
			Temperature: p.cfg.Temperature,
			NumPredict:  p.cfg.MaxTokens,
		},
		Stream: false,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/api/chat", strings.TrimRight(p.cfg.BaseURL, "/"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error communicating with Ollama: %v", err),
			types.NewError(types.ErrInvalidRequest, err.Error()).WithProvider(p.Name()))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error communicating with Ollama: %v", err),
			types.NewError(types.ErrUpstreamError, err.Error()).
				WithCause(err).WithRetryable(true).WithProvider(p.Name()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error: Ollama returned status %d", resp.StatusCode),
			types.NewError(types.ErrUpstreamError, fmt.Sprintf("ollama returned status %d", resp.StatusCode)).
				WithHTTPStatus(resp.StatusCode).
				WithRetryable(resp.StatusCode >= 500).
				WithProvider(p.Name()))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error communicating with Ollama: %v", err),
			types.NewError(types.ErrUpstreamError, err.Error()).
				WithCause(err).WithRetryable(true).WithProvider(p.Name()))
	}

	return &llm.GenerateResult{Text: out.Message.Content, Provider: p.Name(), Model: p.cfg.Model}
}
