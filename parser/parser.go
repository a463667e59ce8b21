// Package parser turns raw model text into a title and numbered pages.
//
// Model formatting is unreliable, so parsing runs in two tiers: strict
// "Page N" marker scanning first, then a paragraph split when no marker
// produced a page. Parse never fails.
package parser

import (
	"regexp"
	"strings"

	"github.com/richinex/tinytales/story"
)

// DefaultTitle is used when the text carries no usable title line.
const DefaultTitle = "Untitled Story"

const (
	titlePrefix = "title:"
	pagePrefix  = "page "
)

var blankLineSplit = regexp.MustCompile(`\n[ \t]*\n`)

// Result is the structured form of a model reply.
type Result struct {
	Title string
	Pages []story.Page
}

// Parse extracts the title and pages from raw. Page numbers always run
// 1..N with no gaps; empty input yields zero pages.
func Parse(raw string) Result {
	text := normalize(raw)

	pages := scanMarkers(text)
	if len(pages) == 0 {
		pages = splitParagraphs(text)
	}

	return Result{
		Title: ExtractTitle(text),
		Pages: pages,
	}
}

// ExtractTitle returns the value of the first "Title:" line. DefaultTitle is
// used when there is no such line or the first one is blank.
func ExtractTitle(raw string) string {
	for _, line := range strings.Split(normalize(raw), "\n") {
		title, ok := titleValue(strings.TrimSpace(line))
		if !ok {
			continue
		}
		if title == "" {
			return DefaultTitle
		}
		return title
	}
	return DefaultTitle
}

func scanMarkers(text string) []story.Page {
	pages := []story.Page{}
	var current []string
	open := false

	closePage := func() {
		if open && len(current) > 0 {
			pages = append(pages, story.Page{
				PageNumber: len(pages) + 1,
				Content:    strings.Join(current, "\n"),
			})
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := titleValue(line); ok {
			continue
		}
		if isPageMarker(line) {
			closePage()
			open = true
			continue
		}
		if open {
			current = append(current, line)
		}
	}
	closePage()

	return pages
}

func splitParagraphs(text string) []story.Page {
	pages := []story.Page{}
	for _, para := range blankLineSplit.Split(text, -1) {
		var kept []string
		for _, line := range strings.Split(para, "\n") {
			if _, ok := titleValue(strings.TrimSpace(line)); ok {
				continue
			}
			kept = append(kept, line)
		}

		content := strings.TrimSpace(strings.Join(kept, "\n"))
		if content == "" {
			continue
		}
		pages = append(pages, story.Page{
			PageNumber: len(pages) + 1,
			Content:    content,
		})
	}
	return pages
}

// titleValue reports whether line is a title line and returns its value.
func titleValue(line string) (string, bool) {
	if !hasPrefixFold(line, titlePrefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(titlePrefix):]), true
}

func isPageMarker(line string) bool {
	return hasPrefixFold(line, pagePrefix)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(raw, "\r", "\n")
}
