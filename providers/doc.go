// Package providers implements the llm.Gateway capability over the supported
// model providers: Ollama (local network), OpenAI, Anthropic, and generic
// OpenAI-compatible custom endpoints.
//
// The Gateway resolves the provider from each invocation's LLMConfig,
// acquires a provider instance scoped to that single call, and releases it on
// every exit path. Wire contracts with each provider are adapter details kept
// inside the per-provider subpackages.
package providers
