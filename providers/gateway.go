package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/crewflow/llm"
	"github.com/BaSui01/crewflow/providers/anthropic"
	"github.com/BaSui01/crewflow/providers/custom"
	"github.com/BaSui01/crewflow/providers/ollama"
	"github.com/BaSui01/crewflow/providers/openai"
	"github.com/BaSui01/crewflow/types"
)

// Options configures the gateway.
type Options struct {
	// Timeout bounds each provider request. Zero means
	// llm.DefaultRequestTimeout.
	Timeout time.Duration
	// RateLimit caps requests per second per provider. Zero disables
	// limiting.
	RateLimit float64
	// Burst is the limiter burst size when RateLimit is set.
	Burst int
}

// Gateway implements llm.Gateway over the four provider variants. A provider
// instance (and its HTTP client) is acquired per invocation and closed before
// Generate returns, success or failure.
type Gateway struct {
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[types.ProviderType]*rate.Limiter
}

// NewGateway creates a gateway. A nil logger is replaced with a no-op logger.
func NewGateway(opts Options, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout == 0 {
		opts.Timeout = llm.DefaultRequestTimeout
	}
	return &Gateway{
		opts:     opts,
		logger:   logger.With(zap.String("component", "llm_gateway")),
		limiters: make(map[types.ProviderType]*rate.Limiter),
	}
}

// Generate dispatches one generation call to the provider selected by cfg.
// Ordinary provider failures come back inside the result, never as a panic or
// error; callers can distinguish them through the result's Fault.
func (g *Gateway) Generate(ctx context.Context, cfg types.LLMConfig, req *llm.GenerateRequest) *llm.GenerateResult {
	if lim := g.limiter(cfg.Provider); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return llm.Faulted(string(cfg.Provider),
				fmt.Sprintf("Error: request cancelled before dispatch: %v", err),
				types.NewError(types.ErrUpstreamTimeout, "cancelled waiting for rate limiter").
					WithCause(err).WithProvider(string(cfg.Provider)))
		}
	}

	gen := g.generator(cfg, req)
	defer gen.Close()

	start := time.Now()
	res := gen.Generate(ctx, req)
	if res.Latency == 0 {
		res.Latency = time.Since(start)
	}

	if res.OK() {
		g.logger.Debug("generation completed",
			zap.String("provider", gen.Name()),
			zap.String("model", cfg.ModelName),
			zap.Int("response_length", len(res.Text)),
			zap.Duration("latency", res.Latency),
		)
	} else {
		g.logger.Warn("generation faulted",
			zap.String("provider", gen.Name()),
			zap.String("model", cfg.ModelName),
			zap.String("code", string(res.Fault.Code)),
			zap.Duration("latency", res.Latency),
		)
	}
	return res
}

// generator builds the provider instance for one invocation, with request
// overrides already folded into the generation parameters. Unknown provider
// values fall through to the custom OpenAI-compatible adapter.
func (g *Gateway) generator(cfg types.LLMConfig, req *llm.GenerateRequest) llm.Generator {
	temperature := llm.ResolveTemperature(cfg, req)
	maxTokens := llm.ResolveMaxTokens(cfg, req)

	switch cfg.Provider {
	case types.ProviderOllama:
		return ollama.New(ollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.ModelName,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     g.opts.Timeout,
		}, g.logger)
	case types.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.ModelName,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     g.opts.Timeout,
		}, g.logger)
	case types.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.ModelName,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     g.opts.Timeout,
		}, g.logger)
	default:
		return custom.New(custom.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.ModelName,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     g.opts.Timeout,
		}, g.logger)
	}
}

func (g *Gateway) limiter(p types.ProviderType) *rate.Limiter {
	if g.opts.RateLimit <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	lim, ok := g.limiters[p]
	if !ok {
		burst := g.opts.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(g.opts.RateLimit), burst)
		g.limiters[p] = lim
	}
	return lim
}
