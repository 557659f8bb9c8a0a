// Package openai adapts the OpenAI chat completions API to the uniform
// generation capability. The adapter also serves any endpoint speaking the
// same wire shape (see the custom provider).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/crewflow/llm"
	"github.com/BaSui01/crewflow/types"
)

// DefaultBaseURL is the hosted OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config configures the OpenAI provider for one invocation. Temperature and
// MaxTokens arrive already resolved (request overrides applied).
type Config struct {
	APIKey      string        `json:"api_key" yaml:"api_key"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Model       string        `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Label is the display name used in human-readable error strings.
	// Defaults to "OpenAI".
	Label string `json:"-" yaml:"-"`
	// KeyOptional skips the missing-credential short circuit and sends the
	// bearer header only when a key is present. Used for OpenAI-compatible
	// custom endpoints.
	KeyOptional bool `json:"-" yaml:"-"`
	// ProviderName overrides the reported provider identifier.
	ProviderName string `json:"-" yaml:"-"`
}

// Provider implements llm.Generator for the OpenAI-compatible chat
// completions wire shape.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates an OpenAI provider instance with its own HTTP client.
func New(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Label == "" {
		cfg.Label = "OpenAI"
	}
	if cfg.ProviderName == "" {
		cfg.ProviderName = "openai"
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

func (p *Provider) Name() string { return p.cfg.ProviderName }

// Close releases the provider's network resources.
func (p *Provider) Close() { p.client.CloseIdleConnections() }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model,omitempty"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate performs one non-streaming chat completions call. A missing API
// key short-circuits to an error string without any network call.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) *llm.GenerateResult {
	if !p.cfg.KeyOptional && p.cfg.APIKey == "" {
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error: %s API key not configured", p.cfg.Label),
			types.NewError(types.ErrMissingCredential, "api key not configured").WithProvider(p.Name()))
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.cfg.BaseURL, "/"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return p.commFault(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return p.commFault(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrMsg(resp.Body)
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error: %s returned status %d", p.cfg.Label, resp.StatusCode),
			mapStatusError(resp.StatusCode, msg, p.Name()))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return p.commFault(err)
	}
	if len(out.Choices) == 0 {
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error: %s returned an empty response", p.cfg.Label),
			types.NewError(types.ErrUpstreamError, "response contained no choices").
				WithRetryable(true).WithProvider(p.Name()))
	}

	model := out.Model
	if model == "" {
		model = p.cfg.Model
	}
	return &llm.GenerateResult{Text: out.Choices[0].Message.Content, Provider: p.Name(), Model: model}
}

func (p *Provider) commFault(err error) *llm.GenerateResult {
	return llm.Faulted(p.Name(),
		fmt.Sprintf("Error communicating with %s: %v", p.cfg.Label, err),
		types.NewError(types.ErrUpstreamError, err.Error()).
			WithCause(err).WithRetryable(true).WithProvider(p.Name()))
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(data)
}

func mapStatusError(status int, msg, provider string) *types.Error {
	switch status {
	case http.StatusUnauthorized:
		return types.NewError(types.ErrUnauthorized, msg).WithHTTPStatus(status).WithProvider(provider)
	case http.StatusForbidden:
		return types.NewError(types.ErrForbidden, msg).WithHTTPStatus(status).WithProvider(provider)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	case http.StatusBadRequest:
		if strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
			return types.NewError(types.ErrQuotaExceeded, msg).WithHTTPStatus(status).WithProvider(provider)
		}
		return types.NewError(types.ErrInvalidRequest, msg).WithHTTPStatus(status).WithProvider(provider)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return types.NewError(types.ErrUpstreamError, msg).WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	default:
		return types.NewError(types.ErrUpstreamError, msg).WithHTTPStatus(status).WithRetryable(status >= 500).WithProvider(provider)
	}
}
