// Package idindex resolves story IDs from unique prefixes.
// Uses go-radix for compressed prefix tree (radix tree).
//
// Story IDs share long common prefixes ("story_12_2025..."), which a radix
// tree stores once per shared run instead of once per key.
package idindex

import (
	"errors"

	"github.com/armon/go-radix"
)

var (
	// ErrNoMatch means no ID starts with the reference.
	ErrNoMatch = errors.New("no id matches")
	// ErrAmbiguous means more than one ID starts with the reference.
	ErrAmbiguous = errors.New("id prefix matches more than one id")
)

// Index is a set of IDs supporting prefix lookup. Not safe for concurrent
// mutation; build one per lookup or guard it externally.
type Index struct {
	tree *radix.Tree
}

// New creates an index holding ids.
func New(ids ...string) *Index {
	idx := &Index{tree: radix.New()}
	for _, id := range ids {
		idx.Add(id)
	}
	return idx
}

// Add inserts id. Empty IDs are ignored.
// Time Complexity: O(k) where k is key length.
func (x *Index) Add(id string) {
	if id == "" {
		return
	}
	x.tree.Insert(id, struct{}{})
}

// Remove deletes id and reports whether it was present.
func (x *Index) Remove(id string) bool {
	_, deleted := x.tree.Delete(id)
	return deleted
}

// Contains reports whether id is present.
func (x *Index) Contains(id string) bool {
	_, found := x.tree.Get(id)
	return found
}

// Len returns the number of IDs.
func (x *Index) Len() int {
	return x.tree.Len()
}

// WithPrefix returns every ID starting with prefix in lexical order.
// Time Complexity: O(k + m) where k is prefix length, m is number of matches.
func (x *Index) WithPrefix(prefix string) []string {
	var ids []string
	x.tree.WalkPrefix(prefix, func(k string, _ interface{}) bool {
		ids = append(ids, k)
		return false
	})
	return ids
}

// Resolve returns the ID equal to ref, or the single ID that starts with
// ref. An exact match wins even when it is also a prefix of other IDs.
func (x *Index) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", ErrNoMatch
	}
	if x.Contains(ref) {
		return ref, nil
	}

	var (
		match string
		count int
	)
	x.tree.WalkPrefix(ref, func(k string, _ interface{}) bool {
		match = k
		count++
		return count > 1
	})

	switch count {
	case 0:
		return "", ErrNoMatch
	case 1:
		return match, nil
	default:
		return "", ErrAmbiguous
	}
}
