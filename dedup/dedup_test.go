package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 0.6, Similarity("the cat sat", "the cat sat on the mat"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("The Cat", "cat the"), 1e-9)
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("hello", ""))
	assert.Equal(t, 0.0, Similarity("red fox", "blue whale"))
}

func TestCheckFindsDuplicate(t *testing.T) {
	r := Check("the cat sat", []string{"the cat sat on the mat"}, 0.5)

	assert.True(t, r.IsDuplicate)
	require.NotNil(t, r.Score)
	assert.InDelta(t, 0.6, *r.Score, 1e-9)
	assert.Equal(t, 0, r.Index)
}

func TestCheckEmptyHistory(t *testing.T) {
	r := Check("hello world", nil, 0.5)

	assert.False(t, r.IsDuplicate)
	assert.Nil(t, r.Score)
	assert.Equal(t, -1, r.Index)
}

func TestCheckBelowThreshold(t *testing.T) {
	r := Check("a b c d", []string{"a x y z"}, 0.75)

	assert.False(t, r.IsDuplicate)
	assert.Nil(t, r.Score)
}

func TestCheckReturnsFirstMatchNotBest(t *testing.T) {
	history := []string{
		"unrelated words entirely",
		"one two three four five",
		"one two three four",
	}
	r := Check("one two three four", history, 0.75)

	require.True(t, r.IsDuplicate)
	assert.Equal(t, 1, r.Index)
	assert.InDelta(t, 0.8, *r.Score, 1e-9)
}

func TestCheckDoesNotMutateHistory(t *testing.T) {
	history := []string{"alpha beta", "gamma"}
	before := append([]string(nil), history...)

	Check("alpha beta", history, 0.1)
	assert.Equal(t, before, history)
}

func TestHistoryAppendSnapshotReset(t *testing.T) {
	h := NewHistory()
	h.Append("  first story  ")
	h.Append("   ")
	h.Append("second story")

	snap := h.Snapshot()
	assert.Equal(t, []string{"first story", "second story"}, snap)
	assert.Equal(t, 2, h.Len())

	snap[0] = "changed"
	assert.Equal(t, "first story", h.Snapshot()[0])

	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Snapshot())
}

func TestHistoryLimitDropsOldest(t *testing.T) {
	h := NewHistory(WithLimit(2))
	h.Append("one")
	h.Append("two")
	h.Append("three")

	assert.Equal(t, []string{"two", "three"}, h.Snapshot())
}

func TestHistoryConcurrentAppend(t *testing.T) {
	h := NewHistory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Append(fmt.Sprintf("story %d", i))
			_ = h.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
