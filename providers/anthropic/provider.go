// Package anthropic adapts the Anthropic messages API to the uniform
// generation capability. The wire shape differs from OpenAI in three ways
// that matter here: authentication uses the x-api-key header, the system
// prompt is a top-level field rather than a message, and the response content
// is an array of typed blocks.
package anthropic

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

// DefaultBaseURL is the hosted Anthropic API root.
const DefaultBaseURL = "https://api.anthropic.com"

// APIVersion is the anthropic-version header value.
const APIVersion = "2023-06-01"

// Config configures the Anthropic provider for one invocation. Temperature
// and MaxTokens arrive already resolved (request overrides applied).
type Config struct {
	APIKey      string        `json:"api_key" yaml:"api_key"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Model       string        `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Provider implements llm.Generator for Anthropic's /v1/messages endpoint.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates an Anthropic provider instance with its own HTTP client.
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

func (p *Provider) Name() string { return "anthropic" }

// Close releases the provider's network resources.
func (p *Provider) Close() { p.client.CloseIdleConnections() }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Model   string         `json:"model,omitempty"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate performs one non-streaming messages call. A missing API key
// short-circuits to an error string without any network call.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) *llm.GenerateResult {
	if p.cfg.APIKey == "" {
		return llm.Faulted(p.Name(),
			"Error: Anthropic API key not configured",
			types.NewError(types.ErrMissingCredential, "api key not configured").WithProvider(p.Name()))
	}

	body := messagesRequest{
		Model:       p.cfg.Model,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		System:      req.SystemPrompt,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.cfg.BaseURL, "/"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return p.commFault(err)
	}
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", APIVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return p.commFault(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrMsg(resp.Body)
		return llm.Faulted(p.Name(),
			fmt.Sprintf("Error: Anthropic returned status %d", resp.StatusCode),
			mapStatusError(resp.StatusCode, msg, p.Name()))
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return p.commFault(err)
	}
	if len(out.Content) == 0 {
		return llm.Faulted(p.Name(),
			"Error: Anthropic returned an empty response",
			types.NewError(types.ErrUpstreamError, "response contained no content blocks").
				WithRetryable(true).WithProvider(p.Name()))
	}

	model := out.Model
	if model == "" {
		model = p.cfg.Model
	}
	return &llm.GenerateResult{Text: out.Content[0].Text, Provider: p.Name(), Model: model}
}

func (p *Provider) commFault(err error) *llm.GenerateResult {
	return llm.Faulted(p.Name(),
		fmt.Sprintf("Error communicating with Anthropic: %v", err),
		types.NewError(types.ErrUpstreamError, err.Error()).
			WithCause(err).WithRetryable(true).WithProvider(p.Name()))
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
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
		if strings.Contains(msg, "credit") || strings.Contains(msg, "quota") {
			return types.NewError(types.ErrQuotaExceeded, msg).WithHTTPStatus(status).WithProvider(provider)
		}
		return types.NewError(types.ErrInvalidRequest, msg).WithHTTPStatus(status).WithProvider(provider)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return types.NewError(types.ErrUpstreamError, msg).WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	case 529: // Anthropic's overloaded status
		return types.NewError(types.ErrModelOverloaded, msg).WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	default:
		return types.NewError(types.ErrUpstreamError, msg).WithHTTPStatus(status).WithRetryable(status >= 500).WithProvider(provider)
	}
}
