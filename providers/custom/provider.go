// Package custom adapts a user-supplied OpenAI-compatible endpoint to the
// uniform generation capability. The API key is optional: the bearer header
// is sent only when a key is configured.
package custom

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/crewflow/llm"
	"github.com/BaSui01/crewflow/providers/openai"
	"github.com/BaSui01/crewflow/types"
)

// Config configures the custom-endpoint provider for one invocation.
type Config struct {
	APIKey      string        `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Model       string        `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Provider implements llm.Generator by delegating to the OpenAI wire adapter
// pointed at the configured base URL.
type Provider struct {
	*openai.Provider
	cfg Config
}

// New creates a custom-endpoint provider instance.
func New(cfg Config, logger *zap.Logger) *Provider {
	return &Provider{
		Provider: openai.New(openai.Config{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			MaxTokens:    cfg.MaxTokens,
			Timeout:      cfg.Timeout,
			Label:        "Custom API",
			KeyOptional:  true,
			ProviderName: "custom",
		}, logger),
		cfg: cfg,
	}
}

// Generate requires a configured base URL; without one it short-circuits to
// an error string without any network call.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) *llm.GenerateResult {
	if p.cfg.BaseURL == "" {
		return llm.Faulted(p.Name(),
			"Error: Custom API base URL not configured",
			types.NewError(types.ErrMissingBaseURL, "base URL not configured").WithProvider(p.Name()))
	}
	return p.Provider.Generate(ctx, req)
}
