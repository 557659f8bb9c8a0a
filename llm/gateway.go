package llm

import (
	"context"
	"time"

	"github.com/BaSui01/crewflow/types"
)

// DefaultRequestTimeout is the baseline per-request timeout providers apply
// when their configuration does not override it.
const DefaultRequestTimeout = 60 * time.Second

// GenerateRequest carries one generation invocation. Temperature and
// MaxTokens, when set, take precedence over the values baked into the
// agent-level LLMConfig.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  *float64
	MaxTokens    *int
}

// GenerateResult is the outcome of one generation call. Text always holds
// something chainable: the model output on success, or a human-readable
// error string when Fault is set.
type GenerateResult struct {
	Text     string        `json:"text"`
	Provider string        `json:"provider"`
	Model    string        `json:"model,omitempty"`
	Fault    *types.Error  `json:"fault,omitempty"`
	Latency  time.Duration `json:"latency,omitempty"`
}

// OK reports whether the call produced genuine model output.
func (r *GenerateResult) OK() bool {
	return r.Fault == nil
}

// Faulted builds a result whose Text carries the human-readable error string
// and whose Fault carries the typed cause.
func Faulted(provider, text string, fault *types.Error) *GenerateResult {
	return &GenerateResult{Text: text, Provider: provider, Fault: fault}
}

// Generator is a single configured provider able to generate text.
type Generator interface {
	// Generate performs one non-streaming generation call. Ordinary provider
	// failures are reported through the result's Fault, never as an error.
	Generate(ctx context.Context, req *GenerateRequest) *GenerateResult

	// Name returns the provider's unique identifier.
	Name() string

	// Close releases the generator's network resources. Generators are
	// scoped to one invocation and must be closed on every exit path.
	Close()
}

// Gateway is the uniform generation capability over all provider variants.
// Implementations resolve the provider from the config, acquire a scoped
// Generator, and release it before returning.
type Gateway interface {
	Generate(ctx context.Context, cfg types.LLMConfig, req *GenerateRequest) *GenerateResult
}

// ResolveTemperature applies request-over-config precedence.
func ResolveTemperature(cfg types.LLMConfig, req *GenerateRequest) float64 {
	if req != nil && req.Temperature != nil {
		return *req.Temperature
	}
	return cfg.Temperature
}

// ResolveMaxTokens applies request-over-config precedence.
func ResolveMaxTokens(cfg types.LLMConfig, req *GenerateRequest) int {
	if req != nil && req.MaxTokens != nil {
		return *req.MaxTokens
	}
	return cfg.MaxTokens
}
