// LLMClient - wraps a provider with timeout, logging and metrics.

package llm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single Generate call.
const DefaultTimeout = 60 * time.Second

// Observer records the outcome of each model request.
type Observer interface {
	ObserveModelRequest(provider, outcome string, elapsed time.Duration)
}

// OutcomeOK is the outcome label for successful requests.
const OutcomeOK = "ok"

// Client wraps a Provider with a simple interface.
type Client struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
	observer Observer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call timeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends prompt to the provider exactly once and returns the reply
// text. Every error is a *Failure.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.GenerateResponse(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateResponse is Generate with finish reason and token usage.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (Response, error) {
	name := c.provider.Name()
	log := c.logger.With(zap.String("provider", name), zap.String("model", c.provider.Model()))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	log.Debug("model request", zap.Int("prompt_chars", len(prompt)))

	resp, err := c.provider.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = newFailure(EmptyResponse, name, resp.FinishReason, nil)
	}
	if err != nil {
		f, ok := AsFailure(err)
		if !ok {
			f = transportFailure(name, err)
		}
		c.observe(name, f.Kind.String(), time.Since(start))
		log.Warn("model request failed",
			zap.String("kind", f.Kind.String()),
			zap.String("reason", f.Message),
			zap.Duration("elapsed", time.Since(start)))
		return Response{}, f
	}

	elapsed := time.Since(start)
	c.observe(name, OutcomeOK, elapsed)

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("finish_reason", resp.FinishReason),
		zap.Int("chars", len(resp.Text)),
	}
	if resp.Usage != nil {
		fields = append(fields,
			zap.Uint32("prompt_tokens", resp.Usage.PromptTokens),
			zap.Uint32("completion_tokens", resp.Usage.CompletionTokens))
	}
	log.Info("model request completed", fields...)

	return resp, nil
}

func (c *Client) observe(provider, outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveModelRequest(provider, outcome, elapsed)
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}
