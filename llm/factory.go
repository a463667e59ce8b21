// LLM Provider Factory - builder-first API for creating story model providers.
//
// Quick Start:
//
//	// Simplest: use defaults, read API key from environment
//	gemini, err := llm.ProviderGemini.FromEnv()  // Uses gemini-2.0-flash
//	groq, err := llm.ProviderGroq.FromEnv()      // Uses llama3-8b-8192
//
//	// Full configuration
//	custom, err := llm.ProviderAnthropic.
//	    Model(llm.ModelAnthropicClaudeHaiku35).
//	    MaxTokens(1500).
//	    Temperature(0.6).
//	    FromEnv()
//
//	// Explicit key; an empty key yields an UnconfiguredProvider
//	provider, err := llm.ProviderGemini.APIKey(os.Getenv("MY_KEY"))

package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderGemini is the Google Gemini provider (default).
	ProviderGemini ProviderType = iota
	// ProviderGroq is Groq's OpenAI-compatible endpoint.
	ProviderGroq
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
)

// ProviderTypes lists every provider type.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderGemini, ProviderGroq, ProviderOpenAI, ProviderAnthropic}
}

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderGemini:
		return "gemini"
	case ProviderGroq:
		return "groq"
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	default:
		return "unknown"
	}
}

// EnvVars returns the environment variables checked for this provider's
// API key, in lookup order.
func (p ProviderType) EnvVars() []string {
	switch p {
	case ProviderGemini:
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case ProviderGroq:
		return []string{"GROQ_API_KEY"}
	case ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	case ProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY"}
	default:
		return nil
	}
}

// EnvVar returns the primary environment variable for this provider's API key.
func (p ProviderType) EnvVar() string {
	if vars := p.EnvVars(); len(vars) > 0 {
		return vars[0]
	}
	return ""
}

// LookupAPIKey returns the first non-empty key among EnvVars.
func (p ProviderType) LookupAPIKey() string {
	for _, name := range p.EnvVars() {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderGemini:
		return ModelGeminiFlash2
	case ProviderGroq:
		return ModelGroqLlama3_8B
	case ProviderOpenAI:
		return ModelOpenAIGPT4oMini
	case ProviderAnthropic:
		return ModelAnthropicClaudeSonnet4
	default:
		return ""
	}
}

// Models lists the known models for this provider, default first.
func (p ProviderType) Models() []string {
	switch p {
	case ProviderGemini:
		return []string{ModelGeminiFlash2, ModelGeminiFlash25}
	case ProviderGroq:
		return []string{ModelGroqLlama3_8B, ModelGroqLlama31_8BInstant}
	case ProviderOpenAI:
		return []string{ModelOpenAIGPT4oMini, ModelOpenAIGPT4o}
	case ProviderAnthropic:
		return []string{ModelAnthropicClaudeSonnet4, ModelAnthropicClaudeHaiku35}
	default:
		return nil
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini", "google":
		return ProviderGemini, nil
	case "groq", "llama":
		return ProviderGroq, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// FromEnv creates a provider with defaults, reading API key from environment.
func (p ProviderType) FromEnv() (Provider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey creates a provider with an explicit API key (uses defaults for everything else).
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder is a builder for configuring LLM providers.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	baseURL      string
	sampling     Sampling
}

// NewProviderBuilder creates a new builder for the given provider.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{
		providerType: providerType,
		sampling:     DefaultSampling(),
	}
}

// Model sets the model to use.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// BaseURL overrides the API endpoint.
func (b *ProviderBuilder) BaseURL(url string) *ProviderBuilder {
	b.baseURL = url
	return b
}

// Sampling replaces the whole sampling configuration. Zero fields other than
// Temperature take defaults.
func (b *ProviderBuilder) Sampling(s Sampling) *ProviderBuilder {
	b.sampling = s
	return b
}

// MaxTokens sets maximum tokens for responses.
func (b *ProviderBuilder) MaxTokens(tokens int32) *ProviderBuilder {
	b.sampling.MaxOutputTokens = tokens
	return b
}

// Temperature sets temperature (0.0 = deterministic, 1.0 = creative).
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.sampling.Temperature = temp
	return b
}

// FromEnv builds the provider, reading API key from environment.
// A missing key is reported as a ConfigurationMissing failure.
func (b *ProviderBuilder) FromEnv() (Provider, error) {
	apiKey := b.providerType.LookupAPIKey()
	if apiKey == "" {
		return nil, missingKey(b.providerType.String(), b.providerType.EnvVar())
	}
	return b.build(apiKey)
}

// APIKey builds the provider with an explicit API key. An empty key builds
// an UnconfiguredProvider so the failure surfaces when Generate is called.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	if strings.TrimSpace(key) == "" {
		if b.providerType.String() == "unknown" {
			return nil, fmt.Errorf("unknown provider type: %v", int(b.providerType))
		}
		return NewUnconfiguredProvider(b.providerType, b.model), nil
	}
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}

	switch b.providerType {
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, b.baseURL, b.sampling), nil
	case ProviderGroq:
		return NewGroqProvider(apiKey, model, b.baseURL, b.sampling), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, b.baseURL, b.sampling), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, b.baseURL, b.sampling), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", int(b.providerType))
	}
}
