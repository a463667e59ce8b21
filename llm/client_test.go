package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProvider struct {
	resp  Response
	err   error
	calls int
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-1" }

func (f *fakeProvider) Generate(ctx context.Context, _ string) (Response, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return Response{}, errors.New("no deadline on context")
	}
	return f.resp, f.err
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveModelRequest(provider, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, provider+":"+outcome)
}

func TestClientGenerateSuccess(t *testing.T) {
	obs := &recordingObserver{}
	core, logs := observer.New(zap.InfoLevel)
	p := &fakeProvider{resp: Response{Text: "Title: A\nPage 1:\nB", FinishReason: "STOP"}}

	c := NewClient(p, WithObserver(obs), WithLogger(zap.New(core)))
	text, err := c.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "Title: A\nPage 1:\nB", text)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"fake:ok"}, obs.outcomes)
	assert.Equal(t, 1, logs.FilterMessage("model request completed").Len())
}

func TestClientBlankTextIsEmptyResponse(t *testing.T) {
	obs := &recordingObserver{}
	p := &fakeProvider{resp: Response{Text: "  \n\t ", FinishReason: "MAX_TOKENS"}}

	_, err := NewClient(p, WithObserver(obs)).Generate(context.Background(), "prompt")

	f := requireFailure(t, err, EmptyResponse)
	assert.Equal(t, "fake", f.Provider)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
	assert.Equal(t, []string{"fake:empty_response"}, obs.outcomes)
}

func TestClientPassesFailureThrough(t *testing.T) {
	want := newFailure(ProviderRejected, "fake", "SAFETY", nil)
	p := &fakeProvider{err: want}

	_, err := NewClient(p).Generate(context.Background(), "prompt")
	f := requireFailure(t, err, ProviderRejected)
	assert.Same(t, want, f)
}

func TestClientWrapsUntypedErrors(t *testing.T) {
	p := &fakeProvider{err: errors.New("socket closed")}

	_, err := NewClient(p).Generate(context.Background(), "prompt")
	f := requireFailure(t, err, TransportError)
	assert.Equal(t, "socket closed", f.Message)
}

func TestClientWarnsOnFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := &fakeProvider{err: newFailure(TransportError, "fake", "HTTP 503: unavailable", nil)}

	_, err := NewClient(p, WithLogger(zap.New(core))).Generate(context.Background(), "prompt")
	require.Error(t, err)

	entries := logs.FilterMessage("model request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "transport_error", entries[0].ContextMap()["kind"])
}

func TestFailureErrorString(t *testing.T) {
	f := &Failure{Kind: ProviderRejected, Provider: "gemini", Message: "SAFETY"}
	assert.Equal(t, "gemini: provider rejected request: SAFETY", f.Error())
	assert.True(t, errors.Is(f, ErrProviderRejected))
	assert.False(t, errors.Is(f, ErrTransport))
}

func TestDefaultSampling(t *testing.T) {
	s := DefaultSampling()
	assert.Equal(t, float32(0.8), s.Temperature)
	assert.Equal(t, float32(0.9), s.TopP)
	assert.Equal(t, int32(32), s.TopK)
	assert.Equal(t, int32(2000), s.MaxOutputTokens)
	assert.Equal(t, int32(1), s.CandidateCount)
	assert.Nil(t, s.StopSequences)

	partial := Sampling{Temperature: 0.3}.withDefaults()
	assert.Equal(t, float32(0.3), partial.Temperature)
	assert.Equal(t, int32(2000), partial.MaxOutputTokens)

	cold := Sampling{MaxOutputTokens: 500}.withDefaults()
	assert.Equal(t, float32(0), cold.Temperature, "explicit zero temperature is kept")
	assert.Equal(t, float32(0.9), cold.TopP)
	assert.Equal(t, int32(500), cold.MaxOutputTokens)

	assert.Equal(t, DefaultSampling(), Sampling{}.withDefaults())
}
