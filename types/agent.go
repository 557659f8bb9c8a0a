package types

import "time"

// ProviderType identifies the LLM provider an agent is bound to.
type ProviderType string

const (
	// ProviderOllama targets a local-network Ollama server.
	ProviderOllama ProviderType = "ollama"
	// ProviderOpenAI targets the hosted OpenAI API.
	ProviderOpenAI ProviderType = "openai"
	// ProviderAnthropic targets the hosted Anthropic API.
	ProviderAnthropic ProviderType = "anthropic"
	// ProviderCustom targets a user-supplied OpenAI-compatible endpoint.
	ProviderCustom ProviderType = "custom"
)

// AgentStatus represents the lifecycle state of an agent record.
// The execution engine never mutates it; status transitions belong to the
// persistence layer that owns agent records.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentRunning   AgentStatus = "running"
	AgentPaused    AgentStatus = "paused"
	AgentError     AgentStatus = "error"
	AgentCompleted AgentStatus = "completed"
)

// Generation parameter defaults applied when an agent leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// Agent is a configured persona bound to one model provider. Agents are
// immutable inputs to an execution.
type Agent struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Role         string       `json:"role" yaml:"role"`
	Description  string       `json:"description" yaml:"description"`
	LLMProvider  ProviderType `json:"llm_provider" yaml:"llm_provider"`
	ModelName    string       `json:"model_name" yaml:"model_name"`
	SystemPrompt string       `json:"system_prompt" yaml:"system_prompt"`
	// Temperature is nil when unset; an explicit 0 means deterministic
	// sampling, not "use the default".
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens" yaml:"max_tokens"`
	Status       AgentStatus  `json:"status" yaml:"status"`
	CreatedAt    time.Time    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// LLMConfig is the transient per-invocation configuration derived from an
// agent at execution time. It is never stored long-term.
type LLMConfig struct {
	Provider    ProviderType `json:"provider" yaml:"provider"`
	APIKey      string       `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string       `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	ModelName   string       `json:"model_name" yaml:"model_name"`
	Temperature float64      `json:"temperature" yaml:"temperature"`
	MaxTokens   int          `json:"max_tokens" yaml:"max_tokens"`
}

// LLMConfig derives the transient provider configuration for one invocation
// of this agent, applying the generation parameter defaults.
func (a *Agent) LLMConfig() LLMConfig {
	cfg := LLMConfig{
		Provider:    a.LLMProvider,
		ModelName:   a.ModelName,
		Temperature: DefaultTemperature,
		MaxTokens:   a.MaxTokens,
	}
	if a.Temperature != nil {
		cfg.Temperature = *a.Temperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return cfg
}
