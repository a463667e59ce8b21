package idindex

import (
	"testing"
)

func TestResolveExactAndPrefix(t *testing.T) {
	idx := New("story_1_20250101090000", "story_2_20250101090500", "story_10_20250102100000")

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{"story_2_20250101090500", "story_2_20250101090500", nil},
		{"story_2", "story_2_20250101090500", nil},
		{"story_10", "story_10_20250102100000", nil},
		{"story_1", "", ErrAmbiguous},
		{"story_3", "", ErrNoMatch},
		{"", "", ErrNoMatch},
	}

	for _, tt := range tests {
		got, err := idx.Resolve(tt.ref)
		if err != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestExactMatchWinsOverLongerKeys(t *testing.T) {
	idx := New("abc", "abcd", "abce")

	got, err := idx.Resolve("abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abc" {
		t.Errorf("expected exact match 'abc', got %q", got)
	}
}

func TestAddRemoveLen(t *testing.T) {
	idx := New()
	idx.Add("a1")
	idx.Add("a2")
	idx.Add("a2")
	idx.Add("")

	if idx.Len() != 2 {
		t.Errorf("expected 2 ids, got %d", idx.Len())
	}
	if !idx.Remove("a1") {
		t.Error("expected a1 to be removed")
	}
	if idx.Remove("a1") {
		t.Error("second remove should report false")
	}
	if idx.Contains("a1") {
		t.Error("a1 should be gone")
	}

	got := idx.WithPrefix("a")
	if len(got) != 1 || got[0] != "a2" {
		t.Errorf("unexpected prefix matches: %v", got)
	}
}

func TestWithPrefixIsSorted(t *testing.T) {
	idx := New("story_3_x", "story_1_x", "story_2_x")

	got := idx.WithPrefix("story_")
	want := []string{"story_1_x", "story_2_x", "story_3_x"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
