package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/tinytales/story"
)

func baseParams() story.Parameters {
	return story.Parameters{
		Genre:         story.GenreAdventure,
		CharacterType: story.CharacterGirl,
		AgeGroup:      story.Age5to7,
		PageCount:     6,
	}
}

func TestBuildContainsPageCountForAllValidParameters(t *testing.T) {
	for _, g := range story.Genres() {
		for _, a := range story.AgeGroups() {
			for n := story.MinPages; n <= story.MaxPages; n++ {
				p := story.Parameters{
					Genre:           g,
					CharacterType:   story.CharacterMixed,
					AgeGroup:        a,
					PageCount:       n,
					Description:     "a picnic that goes wrong",
					IncludeMoral:    n%2 == 0,
					IncludeDialogue: true,
					Rhyming:         n%3 == 0,
				}
				out := Build(p)

				assert.Contains(t, out, fmt.Sprintf("Create exactly %d pages", n))
				assert.Contains(t, out, fmt.Sprintf("Create a %d-page", n))
				for _, bad := range []string{"{", "}", "%!", "<nil>"} {
					assert.NotContains(t, out, bad, "genre=%s age=%s pages=%d", g, a, n)
				}
			}
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	p := baseParams()
	p.Description = "a lost kite"
	p.IncludeMoral = true

	assert.Equal(t, Build(p), Build(p))
}

func TestBuildSectionOrder(t *testing.T) {
	out := Build(baseParams(), WithSeed("12345.678"))

	format := strings.Index(out, "STORY FORMAT")
	age := strings.Index(out, "TARGET AUDIENCE: Ages 5-7 years")
	genre := strings.Index(out, "GENRE FOCUS:")
	length := strings.Index(out, "STORY LENGTH:")
	request := strings.Index(out, "STORY REQUEST:")
	seed := strings.Index(out, "Seed: 12345.678")

	require.True(t, format >= 0 && age >= 0 && genre >= 0 && length >= 0 && request >= 0 && seed >= 0)
	assert.True(t, format < age && age < genre && genre < length && length < request && request < seed)
	assert.True(t, strings.HasSuffix(out, "Seed: 12345.678"))
}

func TestBuildWithoutSeedHasNoSeedLine(t *testing.T) {
	assert.NotContains(t, Build(baseParams()), "Seed:")
	assert.NotContains(t, Build(baseParams(), WithSeed("  ")), "Seed:")
}

func TestUnknownAgeGroupFallsBackToFiveToSeven(t *testing.T) {
	p := baseParams()
	p.AgeGroup = "12-14 years"

	out := System(p)
	assert.Contains(t, out, "TARGET AUDIENCE: Ages 5-7 years")
	assert.Equal(t, AgeGuidance(story.Age5to7), AgeGuidance("unknown"))
}

func TestUnknownGenreOmitsGenreFocus(t *testing.T) {
	p := baseParams()
	p.Genre = "Horror"

	assert.NotContains(t, Build(p), "GENRE FOCUS:")
}

func TestRequirementsJoinedIntoOneSentence(t *testing.T) {
	p := baseParams()
	p.IncludeMoral = true
	p.IncludeDialogue = true
	p.Rhyming = true

	out := Request(p)
	assert.Contains(t, out,
		"• Please include a gentle life lesson, include character conversations, include some rhyming where natural")
	assert.Equal(t, 1, strings.Count(out, "• Please"))
}

func TestSingleRequirement(t *testing.T) {
	p := baseParams()
	p.IncludeDialogue = true

	assert.Equal(t, []string{"include character conversations"}, Requirements(p))
	assert.Contains(t, Request(p), "• Please include character conversations\n")
}

func TestNoRequirementsNoPleaseLine(t *testing.T) {
	out := Build(baseParams())
	assert.NotContains(t, out, "• Please")
	assert.NotContains(t, out, "life lesson that emerges")
}

func TestMoralAndRhymeAddSystemLines(t *testing.T) {
	p := baseParams()
	p.IncludeMoral = true
	p.Rhyming = true

	sys := System(p)
	assert.Contains(t, sys, "Include a gentle life lesson that emerges naturally from the story.")
	assert.Contains(t, sys, "prioritize story flow over forced rhymes")
}

func TestDescriptionOnlyWhenPresent(t *testing.T) {
	p := baseParams()
	assert.NotContains(t, Request(p), "Story concept")

	p.Description = "  a dragon who is afraid of the dark  "
	assert.Contains(t, Request(p), "• Story concept: a dragon who is afraid of the dark\n")
}
