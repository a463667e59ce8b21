package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/richinex/tinytales/dedup"
	"github.com/richinex/tinytales/llm"
	"github.com/richinex/tinytales/storage"
	"github.com/richinex/tinytales/story"
)

const storyText = `Title: The Brave Little Kite

Page 1
Mia found a red kite in the attic.

Page 2
The wind lifted it over the hills.`

type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	panicV  any
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.panicV != nil {
		panic(f.panicV)
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return storyText, nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type failingCounter struct{}

func (failingCounter) Next(context.Context) (int, error)    { return 0, errors.New("disk full") }
func (failingCounter) Current(context.Context) (int, error) { return 0, nil }

type countingRecorder struct {
	stories    int
	pages      []int
	duplicates int
}

func (r *countingRecorder) StoryGenerated(pages int) {
	r.stories++
	r.pages = append(r.pages, pages)
}

func (r *countingRecorder) DuplicateDetected() { r.duplicates++ }

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

func fixedClock() time.Time { return fixedTime }

func validParams() story.Parameters {
	return story.Parameters{
		Genre:         story.GenreAdventure,
		CharacterType: story.CharacterGirl,
		AgeGroup:      story.Age5to7,
		PageCount:     5,
		Description:   "a red kite",
	}
}

func TestGenerateStory(t *testing.T) {
	fake := &fakeGenerator{}
	g := New(fake, storage.NewMemoryCounter(0), nil, WithClock(fixedClock))

	out, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)

	assert.Equal(t, "story_1_20250314092653", out.Record.ID)
	assert.Equal(t, "The Brave Little Kite", out.Result.Title)
	assert.Equal(t, storyText, out.Result.RawText)
	require.Len(t, out.Record.Pages, 2)
	assert.Equal(t, story.Page{PageNumber: 2, Content: "The wind lifted it over the hills."}, out.Record.Pages[1])

	m := out.Record.Metadata
	assert.Equal(t, out.Record.ID, m.ID)
	assert.Equal(t, story.GenreAdventure, m.Genre)
	assert.Equal(t, 5, m.PageCountRequested)
	assert.Equal(t, 2, m.TotalPages)
	assert.Equal(t, "a red kite", m.Description)
	assert.Equal(t, fixedTime, m.CreatedAt)
	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, out.RequestID, m.RequestID)

	assert.False(t, out.Duplicate.IsDuplicate)
	assert.Nil(t, out.Duplicate.Score)
	assert.Equal(t, 1, g.History().Len())
}

func TestGenerateStoryIDsFollowCounter(t *testing.T) {
	g := New(&fakeGenerator{}, storage.NewMemoryCounter(41), nil, WithClock(fixedClock))

	first, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	second, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)

	assert.Equal(t, "story_42_20250314092653", first.Record.ID)
	assert.Equal(t, "story_43_20250314092653", second.Record.ID)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestGenerateStoryFlagsDuplicateOnRepeat(t *testing.T) {
	rec := &countingRecorder{}
	g := New(&fakeGenerator{}, storage.NewMemoryCounter(0), dedup.NewHistory(),
		WithClock(fixedClock), WithMetrics(rec))

	first, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	assert.False(t, first.Duplicate.IsDuplicate)

	second, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, second.Duplicate.IsDuplicate)
	require.NotNil(t, second.Duplicate.Score)
	assert.InDelta(t, 1.0, *second.Duplicate.Score, 1e-9)
	assert.Equal(t, 0, second.Duplicate.Index)

	assert.Equal(t, 2, rec.stories)
	assert.Equal(t, []int{2, 2}, rec.pages)
	assert.Equal(t, 1, rec.duplicates)
}

func TestGenerateStoryThreshold(t *testing.T) {
	fake := &fakeGenerator{replies: []string{
		"one two three four",
		"one two three five",
	}}
	// Similarity of the two replies is 3/5.
	g := New(fake, storage.NewMemoryCounter(0), nil, WithThreshold(0.5))

	_, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	out, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, out.Duplicate.IsDuplicate)

	fake = &fakeGenerator{replies: []string{
		"one two three four",
		"one two three five",
	}}
	g = New(fake, storage.NewMemoryCounter(0), nil)

	_, err = g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	out, err = g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	assert.False(t, out.Duplicate.IsDuplicate)
}

func TestGenerateStorySeed(t *testing.T) {
	fake := &fakeGenerator{}
	g := New(fake, storage.NewMemoryCounter(0), nil, WithClock(fixedClock))

	_, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	require.Len(t, fake.prompts, 1)
	assert.True(t, strings.HasSuffix(fake.prompts[0], "\n\nSeed: 1741944413.589793"), fake.prompts[0])

	fake = &fakeGenerator{}
	g = New(fake, storage.NewMemoryCounter(0), nil, WithSeed(func() string { return "fixed" }))
	_, err = g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fake.prompts[0], "Seed: fixed"))

	fake = &fakeGenerator{}
	g = New(fake, storage.NewMemoryCounter(0), nil, WithoutSeed())
	_, err = g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)
	assert.NotContains(t, fake.prompts[0], "Seed:")
}

func TestGenerateStoryInvalidParameters(t *testing.T) {
	fake := &fakeGenerator{}
	counter := storage.NewMemoryCounter(0)
	g := New(fake, counter, nil)

	params := validParams()
	params.PageCount = 12

	out, err := g.GenerateStory(context.Background(), params)
	assert.Nil(t, out)
	require.Error(t, err)

	genErr, ok := AsError(err)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, GenerationFailed, genErr.Kind)
	assert.True(t, errors.Is(err, ErrGenerationFailed))

	var verr *story.ValidationError
	assert.True(t, errors.As(err, &verr))

	assert.Empty(t, fake.prompts, "no model call for invalid parameters")
	n, _ := counter.Current(context.Background())
	assert.Equal(t, 0, n)
}

func TestGenerateStoryPassesModelFailureThrough(t *testing.T) {
	kinds := []llm.FailureKind{
		llm.ConfigurationMissing,
		llm.ProviderRejected,
		llm.TransportError,
		llm.EmptyResponse,
	}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			failure := &llm.Failure{Kind: kind, Provider: "gemini", Message: "SAFETY"}
			g := New(&fakeGenerator{err: failure}, storage.NewMemoryCounter(0), nil)

			_, err := g.GenerateStory(context.Background(), validParams())
			require.Error(t, err)

			f, ok := llm.AsFailure(err)
			require.True(t, ok)
			assert.Same(t, failure, f)
			assert.Equal(t, kind, f.Kind)

			_, isGenErr := AsError(err)
			assert.False(t, isGenErr)
			assert.Equal(t, 0, g.History().Len(), "failed calls are not recorded")
		})
	}
}

func TestGenerateStoryWrapsUntypedClientError(t *testing.T) {
	g := New(&fakeGenerator{err: errors.New("boom")}, storage.NewMemoryCounter(0), nil)

	_, err := g.GenerateStory(context.Background(), validParams())

	genErr, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, genErr.Message, "boom")
}

func TestGenerateStoryRecoversPanic(t *testing.T) {
	g := New(&fakeGenerator{panicV: "parser exploded"}, storage.NewMemoryCounter(0), nil)

	out, err := g.GenerateStory(context.Background(), validParams())
	assert.Nil(t, out)

	genErr, ok := AsError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, GenerationFailed, genErr.Kind)
	assert.Equal(t, "parser exploded", genErr.Message)
}

func TestGenerateStoryCounterError(t *testing.T) {
	g := New(&fakeGenerator{}, failingCounter{}, nil)

	_, err := g.GenerateStory(context.Background(), validParams())

	genErr, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, genErr.Error(), "disk full")
}

func TestGenerateStoryLogsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	g := New(&fakeGenerator{}, storage.NewMemoryCounter(0), nil, WithLogger(zap.New(core)))

	out, err := g.GenerateStory(context.Background(), validParams())
	require.NoError(t, err)

	entries := logs.FilterMessage("story generated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, out.RequestID, fields["request_id"])
	assert.Equal(t, out.Record.ID, fields["story_id"])
}

func TestGenerateStoryConcurrentIDsAreUnique(t *testing.T) {
	fake := &fakeGenerator{}
	g := New(fake, storage.NewMemoryCounter(0), nil)

	const n = 10
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := g.GenerateStory(context.Background(), validParams())
			if err != nil {
				t.Errorf("generate: %v", err)
				return
			}
			ids <- out.Record.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[strings.SplitN(id, "_", 3)[1]] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, g.History().Len())
}

func TestErrorMessage(t *testing.T) {
	err := failedf(fmt.Errorf("x"), "advance story counter")
	assert.Equal(t, "story generation failed: advance story counter: x", err.Error())
	assert.Equal(t, "story generation failed", (&Error{Kind: GenerationFailed}).Error())
}
