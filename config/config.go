package config

import (
	"time"

	"github.com/BaSui01/crewflow/sandbox"
	"github.com/BaSui01/crewflow/types"
)

// Config is the full runtime configuration.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway" env:"GATEWAY"`
	Sandbox   SandboxConfig   `yaml:"sandbox" env:"SANDBOX"`
	Engine    EngineConfig    `yaml:"engine" env:"ENGINE"`
	Providers ProvidersConfig `yaml:"providers" env:"PROVIDERS"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
}

// GatewayConfig configures the LLM provider gateway.
type GatewayConfig struct {
	// Timeout bounds each provider request.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// RateLimit caps requests per second per provider. Zero disables
	// limiting.
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
	// Burst is the limiter burst size when RateLimit is set.
	Burst int `yaml:"burst" env:"BURST"`
}

// SandboxConfig configures task isolation.
type SandboxConfig struct {
	// Type selects the isolation strategy: none, process, docker.
	Type string `yaml:"type" env:"TYPE"`
	// Timeout bounds each sandboxed task.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// MaxMemoryMB is the per-task memory bound.
	MaxMemoryMB int `yaml:"max_memory_mb" env:"MAX_MEMORY_MB"`
	// MaxCPUPercent is the per-task CPU share.
	MaxCPUPercent int `yaml:"max_cpu_percent" env:"MAX_CPU_PERCENT"`
}

// Limits converts the section into the sandbox resource-limit policy.
func (c SandboxConfig) Limits() sandbox.ResourceLimits {
	return sandbox.ResourceLimits{
		MaxMemoryMB:   c.MaxMemoryMB,
		MaxCPUPercent: c.MaxCPUPercent,
	}
}

// EngineConfig configures the workflow executor.
type EngineConfig struct {
	// MaxDuration bounds one whole execution. Zero means unbounded.
	MaxDuration time.Duration `yaml:"max_duration" env:"MAX_DURATION"`
}

// ProviderCredential holds one provider's endpoint and secret.
type ProviderCredential struct {
	APIKey  string `yaml:"api_key" env:"API_KEY"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

// ProvidersConfig holds per-provider credentials. Read the secrets through
// GrantCredentialAccess, not by walking the struct.
type ProvidersConfig struct {
	Ollama    ProviderCredential `yaml:"ollama" env:"OLLAMA"`
	OpenAI    ProviderCredential `yaml:"openai" env:"OPENAI"`
	Anthropic ProviderCredential `yaml:"anthropic" env:"ANTHROPIC"`
	Custom    ProviderCredential `yaml:"custom" env:"CUSTOM"`
}

// LogConfig configures logging and the audit trail.
type LogConfig struct {
	// Level is the zap log level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is the zap encoding: json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// MaxEntries bounds the in-memory audit trail. Zero means unbounded.
	MaxEntries int `yaml:"max_entries" env:"MAX_ENTRIES"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Timeout:   60 * time.Second,
			RateLimit: 0,
			Burst:     1,
		},
		Sandbox: SandboxConfig{
			Type:          string(sandbox.TypeNone),
			Timeout:       sandbox.DefaultTimeout,
			MaxMemoryMB:   512,
			MaxCPUPercent: 50,
		},
		Engine: EngineConfig{
			MaxDuration: 0,
		},
		Providers: ProvidersConfig{
			Ollama: ProviderCredential{BaseURL: "http://localhost:11434"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// CredentialAccess is the capability to read provider secrets. Only holders
// of a grant can materialize credentials; everything else sees redacted
// values.
type CredentialAccess struct {
	providers ProvidersConfig
}

// GrantCredentialAccess issues the credential-reading capability for this
// configuration. Call it once at wiring time and hand the grant only to the
// component that dispatches provider requests.
func GrantCredentialAccess(cfg *Config) CredentialAccess {
	return CredentialAccess{providers: cfg.Providers}
}

// Credentials materializes the per-provider credential map.
func (a CredentialAccess) Credentials() map[types.ProviderType]ProviderCredential {
	return map[types.ProviderType]ProviderCredential{
		types.ProviderOllama:    a.providers.Ollama,
		types.ProviderOpenAI:    a.providers.OpenAI,
		types.ProviderAnthropic: a.providers.Anthropic,
		types.ProviderCustom:    a.providers.Custom,
	}
}

// Redacted returns a copy safe for logging: all API keys are masked.
func (c *Config) Redacted() Config {
	out := *c
	out.Providers.Ollama.APIKey = mask(out.Providers.Ollama.APIKey)
	out.Providers.OpenAI.APIKey = mask(out.Providers.OpenAI.APIKey)
	out.Providers.Anthropic.APIKey = mask(out.Providers.Anthropic.APIKey)
	out.Providers.Custom.APIKey = mask(out.Providers.Custom.APIKey)
	return out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
