// In-memory story storage.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Suitable for testing and dry runs

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/richinex/tinytales/story"
)

// MemoryStore implements Store using an in-memory map.
// Data is lost when process terminates.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]story.Record
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]story.Record)}
}

// Save saves a copy of record.
func (s *MemoryStore) Save(_ context.Context, record story.Record) (string, error) {
	id := recordID(record)
	if id == "" {
		return "", errors.New("record has no id")
	}
	record.ID = id
	record.Metadata.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = copyRecord(record)
	return id, nil
}

// Get returns the record with id or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (story.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return story.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyRecord(r), nil
}

// List returns every record ordered by creation time, then ID.
func (s *MemoryStore) List(_ context.Context) ([]story.Record, error) {
	s.mu.RLock()
	out := make([]story.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, copyRecord(r))
	}
	s.mu.RUnlock()

	sortRecords(out)
	return out, nil
}

// Delete removes a record and reports whether it existed.
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

// Filter returns the records matching f, in List order.
func (s *MemoryStore) Filter(ctx context.Context, f Filter) ([]story.Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterRecords(records, f), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// MemoryCounter implements Counter in memory.
type MemoryCounter struct {
	mu    sync.Mutex
	value int
}

// NewMemoryCounter creates a counter starting at start.
func NewMemoryCounter(start int) *MemoryCounter {
	return &MemoryCounter{value: start}
}

// Next increments the counter and returns the new value.
func (c *MemoryCounter) Next(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value, nil
}

// Current returns the value without changing it.
func (c *MemoryCounter) Current(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, nil
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Counter = (*MemoryCounter)(nil)
)
