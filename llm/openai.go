// OpenAI-compatible Provider implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for the Chat Completions API
// - Content filter finish reasons and HTTP error mapping
//
// Groq serves the same API under a different base URL, so one
// implementation covers both.

package llm

import (
	"context"
	"errors"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIProvider implements the Provider interface for OpenAI-compatible APIs.
type OpenAIProvider struct {
	client   *openai.Client
	name     string
	model    string
	sampling Sampling
}

// NewOpenAIProvider creates a new OpenAI provider. An empty baseURL uses the
// public OpenAI endpoint.
func NewOpenAIProvider(apiKey, model, baseURL string, sampling Sampling) *OpenAIProvider {
	return newOpenAICompatible("openai", apiKey, model, baseURL, sampling)
}

// NewGroqProvider creates a provider for Groq's OpenAI-compatible endpoint.
func NewGroqProvider(apiKey, model, baseURL string, sampling Sampling) *OpenAIProvider {
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	return newOpenAICompatible("groq", apiKey, model, baseURL, sampling)
}

func newOpenAICompatible(name, apiKey, model, baseURL string, sampling Sampling) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(config),
		name:     name,
		model:    model,
		sampling: sampling.withDefaults(),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Model returns the current model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Generate sends the prompt as a single user message.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   int(p.sampling.MaxOutputTokens),
		Temperature: openAITemperature(p.sampling.Temperature),
		TopP:        p.sampling.TopP,
		N:           int(p.sampling.CandidateCount),
		Stop:        p.sampling.StopSequences,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, p.failure(err)
	}

	content := ""
	finish := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finish = string(resp.Choices[0].FinishReason)
		if resp.Choices[0].FinishReason == openai.FinishReasonContentFilter {
			return Response{}, newFailure(ProviderRejected, p.Name(), finish, nil)
		}
		if refusal := resp.Choices[0].Message.Refusal; refusal != "" {
			return Response{}, newFailure(ProviderRejected, p.Name(), "refusal: "+refusal, nil)
		}
	}

	usage := &TokenUsage{
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		TotalTokens:      uint32(resp.Usage.TotalTokens),
	}

	return Response{Text: content, FinishReason: finish, Usage: usage}, nil
}

// openAITemperature keeps an explicit 0 on the wire. The request field is
// omitempty, so 0 would be dropped and the API default of 1 applied.
func openAITemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func (p *OpenAIProvider) failure(err error) *Failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusFailure(p.Name(), apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return statusFailure(p.Name(), reqErr.HTTPStatusCode, msg, err)
	}
	return transportFailure(p.Name(), err)
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
