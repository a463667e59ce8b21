// Anthropic Provider implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - Refusal stop reasons and HTTP error mapping

package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicStopRefusal = "refusal"

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client   anthropic.Client
	model    string
	sampling Sampling
}

// NewAnthropicProvider creates a new Anthropic provider. SDK retries are
// disabled so a Generate call is exactly one request.
func NewAnthropicProvider(apiKey, model, baseURL string, sampling Sampling) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		client:   anthropic.NewClient(opts...),
		model:    model,
		sampling: sampling.withDefaults(),
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Generate sends the prompt as a single user message.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.sampling.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature:   anthropic.Float(float64(p.sampling.Temperature)),
		TopK:          anthropic.Int(int64(p.sampling.TopK)),
		StopSequences: p.sampling.StopSequences,
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, p.failure(err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(variant.Text)
		}
	}

	finish := string(message.StopReason)
	if finish == anthropicStopRefusal {
		return Response{}, newFailure(ProviderRejected, p.Name(), finish, nil)
	}

	var usage *TokenUsage
	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		usage = &TokenUsage{
			PromptTokens:     uint32(message.Usage.InputTokens),
			CompletionTokens: uint32(message.Usage.OutputTokens),
			TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
	}

	return Response{Text: content.String(), FinishReason: finish, Usage: usage}, nil
}

func (p *AnthropicProvider) failure(err error) *Failure {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return statusFailure(p.Name(), apiErr.StatusCode, "", err)
	}
	return transportFailure(p.Name(), err)
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
