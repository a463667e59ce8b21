package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/tinytales/story"
)

var baseTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testRecord(id string, offset time.Duration, genre story.Genre) story.Record {
	params := story.Parameters{
		Genre:         genre,
		CharacterType: story.CharacterGirl,
		AgeGroup:      story.Age5to7,
		PageCount:     5,
		Description:   "a kite & a <cloud>",
	}
	result := story.GenerationResult{
		Title: "The Kite " + id,
		Pages: []story.Page{
			{PageNumber: 1, Content: "Mia had a red kite."},
			{PageNumber: 2, Content: "Ünïcode wind blew, whoosh ☁!"},
		},
	}
	return story.NewRecord(id, params, result, baseTime.Add(offset), "req-"+id)
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"json":   NewJSONStore(filepath.Join(t.TempDir(), "data", "stories.json")),
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("story_1_20250314092653", 0, story.GenreAdventure)

			id, err := s.Save(ctx, rec)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, id)

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, rec.Pages, got.Pages)
			assert.Equal(t, rec.Metadata.Title, got.Metadata.Title)
			assert.Equal(t, rec.Metadata.Description, got.Metadata.Description)
			assert.Equal(t, rec.Metadata.RequestID, got.Metadata.RequestID)
			assert.Equal(t, 2, got.Metadata.TotalPages)
			assert.True(t, rec.Metadata.CreatedAt.Equal(got.Metadata.CreatedAt))
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "story_404")
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestStoreResaveOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("story_1_x", 0, story.GenreFantasy)
			_, err := s.Save(ctx, rec)
			require.NoError(t, err)

			rec.Pages = []story.Page{{PageNumber: 1, Content: "Only page"}}
			rec.Metadata.TotalPages = 1
			rec.Metadata.Title = "Rewritten"
			_, err = s.Save(ctx, rec)
			require.NoError(t, err)

			got, err := s.Get(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, "Rewritten", got.Metadata.Title)
			assert.Len(t, got.Pages, 1)

			all, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStoreListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range []story.Record{
				testRecord("story_3_c", 2*time.Minute, story.GenreMystery),
				testRecord("story_1_a", 0, story.GenreAdventure),
				testRecord("story_2_b", time.Minute, story.GenreMystery),
				testRecord("story_0_z", time.Minute, story.GenreAdventure),
			} {
				_, err := s.Save(ctx, r)
				require.NoError(t, err)
			}

			all, err := s.List(ctx)
			require.NoError(t, err)
			ids := make([]string, len(all))
			for i, r := range all {
				ids[i] = r.ID
			}
			assert.Equal(t, []string{"story_1_a", "story_0_z", "story_2_b", "story_3_c"}, ids)

			mysteries, err := s.Filter(ctx, Filter{Genre: story.GenreMystery})
			require.NoError(t, err)
			require.Len(t, mysteries, 2)
			assert.Equal(t, "story_2_b", mysteries[0].ID)

			none, err := s.Filter(ctx, Filter{AgeGroup: story.Age3to5})
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)

			everything, err := s.Filter(ctx, Filter{})
			require.NoError(t, err)
			assert.Len(t, everything, 4)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("story_1_x", 0, story.GenreFriendship)
			_, err := s.Save(ctx, rec)
			require.NoError(t, err)

			ok, err := s.Delete(ctx, rec.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.Delete(ctx, rec.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = s.Get(ctx, rec.ID)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, story.Record{})
			assert.Error(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, id := range []string{"story_1_20250101", "story_12_20250102", "story_2_20250103"} {
		_, err := s.Save(ctx, testRecord(id, 0, story.GenreAdventure))
		require.NoError(t, err)
	}

	id, err := Resolve(ctx, s, "story_2")
	require.NoError(t, err)
	assert.Equal(t, "story_2_20250103", id)

	id, err = Resolve(ctx, s, "story_1_20250101")
	require.NoError(t, err)
	assert.Equal(t, "story_1_20250101", id)

	_, err = Resolve(ctx, s, "story_1")
	assert.True(t, errors.Is(err, ErrAmbiguous), "got %v", err)

	_, err = Resolve(ctx, s, "story_9")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}
