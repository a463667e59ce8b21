// Google Gemini Provider implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Sampling and safety settings for the Gemini API
// - Prompt-level and candidate-level safety blocks

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiSafetySettings blocks medium-and-above harm in every category a
// children's story could trip.
var geminiSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
}

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client   *genai.Client
	model    string
	sampling Sampling
	initErr  error // Stores client initialization error for deferred reporting
}

// NewGeminiProvider creates a new Gemini provider. An empty baseURL uses the
// SDK default endpoint.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiProvider(apiKey, model, baseURL string, sampling Sampling) *GeminiProvider {
	p := &GeminiProvider{
		model:    model,
		sampling: sampling.withDefaults(),
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		p.initErr = fmt.Errorf("failed to initialize Gemini client: %w", err)
		return p
	}
	p.client = client
	return p
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the current model.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Generate sends the prompt as a single user turn.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (Response, error) {
	if p.initErr != nil {
		return Response{}, newFailure(ConfigurationMissing, p.Name(), p.initErr.Error(), p.initErr)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.sampling.Temperature),
		TopP:            genai.Ptr(p.sampling.TopP),
		TopK:            genai.Ptr(float32(p.sampling.TopK)),
		CandidateCount:  p.sampling.CandidateCount,
		MaxOutputTokens: p.sampling.MaxOutputTokens,
		StopSequences:   p.sampling.StopSequences,
		SafetySettings:  geminiSafetySettings,
	}

	response, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return Response{}, p.failure(err)
	}

	if fb := response.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return Response{}, newFailure(ProviderRejected, p.Name(),
			joinReason(string(fb.BlockReason), fb.BlockReasonMessage), nil)
	}

	var finish string
	if len(response.Candidates) > 0 {
		c := response.Candidates[0]
		finish = string(c.FinishReason)
		if geminiBlocked(c.FinishReason) {
			return Response{}, newFailure(ProviderRejected, p.Name(),
				joinReason(finish, c.FinishMessage), nil)
		}
	}

	var usage *TokenUsage
	if response.UsageMetadata != nil {
		usage = &TokenUsage{
			PromptTokens:     uint32(response.UsageMetadata.PromptTokenCount),
			CompletionTokens: uint32(response.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      uint32(response.UsageMetadata.TotalTokenCount),
		}
	}

	return Response{Text: response.Text(), FinishReason: finish, Usage: usage}, nil
}

func geminiBlocked(reason genai.FinishReason) bool {
	switch reason {
	case genai.FinishReasonSafety,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonBlocklist,
		genai.FinishReasonSPII,
		genai.FinishReasonRecitation:
		return true
	default:
		return false
	}
}

func (p *GeminiProvider) failure(err error) *Failure {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusFailure(p.Name(), apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return statusFailure(p.Name(), apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return transportFailure(p.Name(), err)
}

func joinReason(reason, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return reason
	}
	return reason + ": " + message
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
