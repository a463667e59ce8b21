package llm

// Response is a successful reply from a provider.
type Response struct {
	Text         string
	FinishReason string
	Usage        *TokenUsage
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}

// Sampling holds the generation parameters sent with every request.
// Providers ignore fields their API has no equivalent for.
type Sampling struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
	CandidateCount  int32
	StopSequences   []string
}

// Sampling defaults used when nothing is configured.
const (
	DefaultTemperature     float32 = 0.8
	DefaultTopP            float32 = 0.9
	DefaultTopK            int32   = 32
	DefaultMaxOutputTokens int32   = 2000
	DefaultCandidateCount  int32   = 1
)

// DefaultSampling returns the default sampling configuration.
func DefaultSampling() Sampling {
	return Sampling{
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		TopK:            DefaultTopK,
		MaxOutputTokens: DefaultMaxOutputTokens,
		CandidateCount:  DefaultCandidateCount,
	}
}

// withDefaults fills zero fields from DefaultSampling. Temperature 0 is a
// valid setting and is kept unless the whole Sampling is zero.
func (s Sampling) withDefaults() Sampling {
	d := DefaultSampling()
	if s.isZero() {
		return d
	}
	if s.TopP == 0 {
		s.TopP = d.TopP
	}
	if s.TopK == 0 {
		s.TopK = d.TopK
	}
	if s.MaxOutputTokens == 0 {
		s.MaxOutputTokens = d.MaxOutputTokens
	}
	if s.CandidateCount == 0 {
		s.CandidateCount = d.CandidateCount
	}
	return s
}

func (s Sampling) isZero() bool {
	return s.Temperature == 0 && s.TopP == 0 && s.TopK == 0 &&
		s.MaxOutputTokens == 0 && s.CandidateCount == 0 && len(s.StopSequences) == 0
}

// Model identifier constants for all supported providers.

// Gemini model identifiers
const (
	// ModelGeminiFlash2 is Gemini 2.0 Flash, the default story model.
	ModelGeminiFlash2 = "gemini-2.0-flash"
	// ModelGeminiFlash25 is Gemini 2.5 Flash.
	ModelGeminiFlash25 = "gemini-2.5-flash"
)

// Groq model identifiers
const (
	// ModelGroqLlama3_8B is Llama 3 8B served by Groq.
	ModelGroqLlama3_8B = "llama3-8b-8192"
	// ModelGroqLlama31_8BInstant is Llama 3.1 8B Instant served by Groq.
	ModelGroqLlama31_8BInstant = "llama-3.1-8b-instant"
)

// OpenAI model identifiers
const (
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
	ModelOpenAIGPT4o     = "gpt-4o"
)

// Anthropic model identifiers
const (
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
	ModelAnthropicClaudeHaiku35 = "claude-3-5-haiku-20241022"
)
