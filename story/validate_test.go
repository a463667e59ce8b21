package story

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Parameters {
	return Parameters{
		Genre:         GenreFantasy,
		CharacterType: CharacterGirl,
		AgeGroup:      Age3to5,
		PageCount:     5,
	}
}

func TestValidateAcceptsAllEnumValues(t *testing.T) {
	for _, g := range Genres() {
		for _, c := range CharacterTypes() {
			for _, a := range AgeGroups() {
				p := Parameters{Genre: g, CharacterType: c, AgeGroup: a, PageCount: 6}
				assert.NoError(t, p.Validate(), "genre=%s character=%s age=%s", g, c, a)
			}
		}
	}
}

func TestValidateRejectsUnknownGenre(t *testing.T) {
	p := validParams()
	p.Genre = "Horror"

	err := p.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "genre")
}

func TestValidatePageCountBounds(t *testing.T) {
	for _, n := range []int{0, 4, 9, 100} {
		p := validParams()
		p.PageCount = n
		err := p.Validate()
		require.Error(t, err, "page count %d", n)
		assert.Contains(t, err.Error(), "page_count")
	}
	for n := MinPages; n <= MaxPages; n++ {
		p := validParams()
		p.PageCount = n
		assert.NoError(t, p.Validate(), "page count %d", n)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	err := Parameters{}.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 4)
	assert.Contains(t, err.Error(), "age_group")
}

func TestWithDefaults(t *testing.T) {
	p := Parameters{Genre: GenreMystery}.WithDefaults()
	assert.Equal(t, GenreMystery, p.Genre)
	assert.Equal(t, CharacterBoy, p.CharacterType)
	assert.Equal(t, Age5to7, p.AgeGroup)
	assert.Equal(t, DefaultPages, p.PageCount)
	assert.NoError(t, p.Validate())
}

func TestParseHelpers(t *testing.T) {
	g, err := ParseGenre("science fiction")
	require.NoError(t, err)
	assert.Equal(t, GenreScienceFiction, g)

	c, err := ParseCharacterType("animal character")
	require.NoError(t, err)
	assert.Equal(t, CharacterAnimal, c)

	a, err := ParseAgeGroup("7-9")
	require.NoError(t, err)
	assert.Equal(t, Age7to9, a)

	_, err = ParseAgeGroup("10-12")
	assert.Error(t, err)
}

func TestNewRecordCopiesPages(t *testing.T) {
	result := GenerationResult{
		Title: "Luna's Big Day",
		Pages: []Page{{PageNumber: 1, Content: "Hello"}},
	}
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := NewRecord("story_1_20250102030405", validParams(), result, created, "req-1")
	result.Pages[0].Content = "changed"

	assert.Equal(t, "Hello", rec.Pages[0].Content)
	assert.Equal(t, "story_1_20250102030405", rec.Metadata.ID)
	assert.Equal(t, 1, rec.Metadata.TotalPages)
	assert.Equal(t, 5, rec.Metadata.PageCountRequested)
	assert.Equal(t, created, rec.Metadata.CreatedAt)
}
