// Package generator runs one story request end to end: validate, prompt,
// call the model, parse, flag duplicates and assign an ID.
//
// Information Hiding:
// - Ordering of the pipeline stages
// - Seed and ID formats
// - Locking around the shared history and counter
// - Panic recovery
package generator

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richinex/tinytales/dedup"
	"github.com/richinex/tinytales/llm"
	"github.com/richinex/tinytales/parser"
	"github.com/richinex/tinytales/prompt"
	"github.com/richinex/tinytales/storage"
	"github.com/richinex/tinytales/story"
)

// idTimeLayout is the timestamp suffix of story IDs.
const idTimeLayout = "20060102150405"

// TextGenerator sends one prompt and returns the reply text.
// *llm.Client satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder receives per-story counts. *metrics.Collector satisfies it.
type Recorder interface {
	StoryGenerated(pages int)
	DuplicateDetected()
}

// Outcome is everything one successful generation produced.
type Outcome struct {
	Record    story.Record
	Result    story.GenerationResult
	Duplicate dedup.Result
	RequestID string
}

// Generator orchestrates story generation. Safe for concurrent use.
type Generator struct {
	client    TextGenerator
	counter   storage.Counter
	history   *dedup.History
	logger    *zap.Logger
	recorder  Recorder
	now       func() time.Time
	seed      func() string
	threshold float64

	mu sync.Mutex
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics sets the recorder for generated and duplicate counts.
func WithMetrics(r Recorder) Option {
	return func(g *Generator) {
		g.recorder = r
	}
}

// WithClock replaces time.Now for IDs, timestamps and the default seed.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSeed sets the function producing the per-request variation seed.
func WithSeed(seed func() string) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithoutSeed sends prompts without a seed line.
func WithoutSeed() Option {
	return func(g *Generator) {
		g.seed = nil
	}
}

// WithThreshold sets the duplicate similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(g *Generator) {
		if threshold > 0 {
			g.threshold = threshold
		}
	}
}

// New creates a Generator. A nil history gets a fresh unbounded one.
func New(client TextGenerator, counter storage.Counter, history *dedup.History, opts ...Option) *Generator {
	if history == nil {
		history = dedup.NewHistory()
	}
	g := &Generator{
		client:    client,
		counter:   counter,
		history:   history,
		logger:    zap.NewNop(),
		now:       time.Now,
		threshold: dedup.DefaultThreshold,
	}
	g.seed = g.timeSeed
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// timeSeed returns the current Unix time with fractional seconds.
func (g *Generator) timeSeed() string {
	t := g.now()
	return strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', 6, 64)
}

// History returns the duplicate history shared by this generator.
func (g *Generator) History() *dedup.History {
	return g.history
}

// GenerateStory produces one story from params. Errors are either a
// *llm.Failure from the model call or a *Error.
func (g *Generator) GenerateStory(ctx context.Context, params story.Parameters) (out *Outcome, err error) {
	requestID := uuid.NewString()
	logger := g.logger.With(zap.String("request_id", requestID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("story generation panicked", zap.Any("panic", r))
			out = nil
			err = &Error{Kind: GenerationFailed, Message: fmt.Sprint(r)}
		}
	}()

	if verr := params.Validate(); verr != nil {
		return nil, failed(verr)
	}

	var opts []prompt.Option
	if g.seed != nil {
		opts = append(opts, prompt.WithSeed(g.seed()))
	}
	text := prompt.Build(params, opts...)

	logger.Debug("requesting story",
		zap.String("genre", string(params.Genre)),
		zap.String("age_group", string(params.AgeGroup)),
		zap.Int("pages", params.PageCount),
		zap.Int("prompt_chars", len(text)))

	raw, err := g.client.Generate(ctx, text)
	if err != nil {
		if f, ok := llm.AsFailure(err); ok {
			logger.Warn("model call failed",
				zap.Stringer("kind", f.Kind),
				zap.String("provider", f.Provider),
				zap.String("message", f.Message))
			return nil, f
		}
		return nil, failedf(err, "model call")
	}

	parsed := parser.Parse(raw)
	result := story.GenerationResult{
		RawText: raw,
		Title:   parsed.Title,
		Pages:   parsed.Pages,
	}

	dup, n, createdAt, err := g.register(ctx, raw)
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("story_%d_%s", n, createdAt.Format(idTimeLayout))
	record := story.NewRecord(id, params, result, createdAt, requestID)

	if g.recorder != nil {
		g.recorder.StoryGenerated(len(result.Pages))
		if dup.IsDuplicate {
			g.recorder.DuplicateDetected()
		}
	}

	fields := []zap.Field{
		zap.String("story_id", id),
		zap.String("title", result.Title),
		zap.Int("pages", len(result.Pages)),
	}
	if dup.IsDuplicate {
		logger.Warn("generated story resembles an earlier one",
			append(fields, zap.Float64("similarity", *dup.Score), zap.Int("history_index", dup.Index))...)
	} else {
		logger.Info("story generated", fields...)
	}

	return &Outcome{
		Record:    record,
		Result:    result,
		Duplicate: dup,
		RequestID: requestID,
	}, nil
}

// register checks raw against the history, appends it and advances the
// counter as one step.
func (g *Generator) register(ctx context.Context, raw string) (dedup.Result, int, time.Time, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	dup := dedup.Check(raw, g.history.Snapshot(), g.threshold)
	g.history.Append(raw)

	n, err := g.counter.Next(ctx)
	if err != nil {
		return dedup.Result{}, 0, time.Time{}, failedf(err, "advance story counter")
	}
	return dup, n, g.now(), nil
}
