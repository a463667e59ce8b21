// Package prompt turns story parameters into the instruction text sent to
// the model. Building is pure: no clock, no randomness, no I/O. Callers that
// want varied output pass a seed with WithSeed.
package prompt

import (
	"fmt"
	"strings"

	"github.com/richinex/tinytales/story"
)

// Option adjusts a single Build call.
type Option func(*options)

type options struct {
	seed string
}

// WithSeed appends a "Seed:" line to the prompt. An empty seed is ignored.
func WithSeed(seed string) Option {
	return func(o *options) {
		o.seed = strings.TrimSpace(seed)
	}
}

// Build returns the complete prompt for params: system guidance, then the
// story request, then the optional seed line.
func Build(params story.Parameters, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	b.WriteString(System(params))
	b.WriteString("\n\nSTORY REQUEST:\n")
	b.WriteString(Request(params))
	if o.seed != "" {
		b.WriteString("\n\nSeed: ")
		b.WriteString(o.seed)
	}
	return b.String()
}

// System returns the guidance section: format rules, age tier, genre focus,
// the page count and the optional moral and rhyme lines.
func System(params story.Parameters) string {
	sections := []string{baseInstructions, AgeGuidance(params.AgeGroup)}

	if focus, ok := genreGuidance[params.Genre]; ok {
		sections = append(sections, "GENRE FOCUS: "+focus)
	}

	sections = append(sections,
		fmt.Sprintf("STORY LENGTH: Create exactly %d pages following the format above.", params.PageCount))

	var extras []string
	if params.IncludeMoral {
		extras = append(extras, moralLine)
	}
	if params.Rhyming {
		extras = append(extras, rhymeLine)
	}
	if len(extras) > 0 {
		sections = append(sections, strings.Join(extras, "\n"))
	}

	return strings.Join(sections, "\n\n")
}

// Request returns the user-facing story request as bullet lines.
func Request(params story.Parameters) string {
	lines := []string{
		fmt.Sprintf("Create a %d-page children's picture book story with these details:", params.PageCount),
		fmt.Sprintf("• Genre: %s", params.Genre),
		fmt.Sprintf("• Main character: %s", params.CharacterType),
		fmt.Sprintf("• Target age: %s", params.AgeGroup),
	}

	if desc := strings.TrimSpace(params.Description); desc != "" {
		lines = append(lines, "• Story concept: "+desc)
	}

	if reqs := Requirements(params); len(reqs) > 0 {
		lines = append(lines, "• Please "+strings.Join(reqs, ", "))
	}

	lines = append(lines, "", formatReminder)
	return strings.Join(lines, "\n")
}

// Requirements returns the enabled requirement phrases in a fixed order:
// moral, dialogue, rhyme.
func Requirements(params story.Parameters) []string {
	var reqs []string
	if params.IncludeMoral {
		reqs = append(reqs, moralPhrase)
	}
	if params.IncludeDialogue {
		reqs = append(reqs, dialoguePhrase)
	}
	if params.Rhyming {
		reqs = append(reqs, rhymePhrase)
	}
	return reqs
}

// AgeGuidance returns the tier text for age, falling back to the 5-7 tier
// for unrecognized values.
func AgeGuidance(age story.AgeGroup) string {
	if text, ok := ageGuidance[age]; ok {
		return text
	}
	return ageGuidance[fallbackAge]
}
