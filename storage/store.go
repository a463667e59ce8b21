// Package storage persists story records and the story counter.
//
// Information Hiding:
// - File layout and serialization format
// - Locking around read-modify-write cycles
// - Atomic replace of whole files
// - SQLite schema details

package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/richinex/tinytales/story"
)

var (
	// ErrNotFound is returned when no story matches an ID or prefix.
	ErrNotFound = errors.New("story not found")
	// ErrAmbiguous is returned when an ID prefix matches more than one story.
	ErrAmbiguous = errors.New("story id prefix is ambiguous")
)

// Store persists story records keyed by ID.
type Store interface {
	// Save writes record under its ID, replacing any existing record.
	Save(ctx context.Context, record story.Record) (string, error)
	// Get returns the record with id or ErrNotFound.
	Get(ctx context.Context, id string) (story.Record, error)
	// List returns every record ordered by creation time, then ID.
	List(ctx context.Context) ([]story.Record, error)
	// Delete removes a record and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	// Filter returns the records matching f, in List order.
	Filter(ctx context.Context, f Filter) ([]story.Record, error)
	Close() error
}

// Counter is the persistent story sequence.
type Counter interface {
	// Next increments the counter and returns the new value.
	Next(ctx context.Context) (int, error)
	// Current returns the value without changing it.
	Current(ctx context.Context) (int, error)
}

// Filter selects records by metadata. Empty fields match everything.
type Filter struct {
	Genre         story.Genre
	AgeGroup      story.AgeGroup
	CharacterType story.CharacterType
}

// Matches reports whether r satisfies every set field of f.
func (f Filter) Matches(r story.Record) bool {
	if f.Genre != "" && r.Metadata.Genre != f.Genre {
		return false
	}
	if f.AgeGroup != "" && r.Metadata.AgeGroup != f.AgeGroup {
		return false
	}
	if f.CharacterType != "" && r.Metadata.CharacterType != f.CharacterType {
		return false
	}
	return true
}

func filterRecords(records []story.Record, f Filter) []story.Record {
	out := []story.Record{}
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortRecords(records []story.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Metadata.CreatedAt, records[j].Metadata.CreatedAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return records[i].ID < records[j].ID
	})
}

func recordID(r story.Record) string {
	if r.ID != "" {
		return r.ID
	}
	return r.Metadata.ID
}

func copyRecord(r story.Record) story.Record {
	pages := make([]story.Page, len(r.Pages))
	copy(pages, r.Pages)
	r.Pages = pages
	return r
}
