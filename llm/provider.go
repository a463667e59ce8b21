// Package llm provides the story model client and its provider backends.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Mapping SDK errors and safety blocks onto Failure kinds
//
// Providers make exactly one call per Generate. There is no retry logic
// anywhere in this package.

package llm

import (
	"context"
)

// Provider defines the abstract interface for text generation backends.
type Provider interface {
	// Name returns the provider name (for logging/metrics).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Generate sends a single prompt and returns the model's reply.
	// Errors are always *Failure.
	Generate(ctx context.Context, prompt string) (Response, error)
}
