package storage

import (
	"context"
	"fmt"
	"sync"
)

type counterFile struct {
	Count int `json:"count"`
}

// JSONCounter keeps the story sequence in a {"count": n} file.
type JSONCounter struct {
	mu     sync.Mutex
	path   string
	atomic bool
}

// NewJSONCounter creates a counter backed by the file at path. A missing
// file counts as zero.
func NewJSONCounter(path string, opts ...JSONOption) *JSONCounter {
	o := applyJSONOptions(opts)
	return &JSONCounter{path: path, atomic: o.atomic}
}

// Next increments the counter and returns the new value.
func (c *JSONCounter) Next(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var f counterFile
	if _, err := readJSONFile(c.path, &f); err != nil {
		return 0, err
	}
	f.Count++

	if err := writeJSONFile(c.path, f, c.atomic); err != nil {
		return 0, fmt.Errorf("failed to update story counter: %w", err)
	}
	return f.Count, nil
}

// Current returns the value without changing it.
func (c *JSONCounter) Current(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var f counterFile
	if _, err := readJSONFile(c.path, &f); err != nil {
		return 0, err
	}
	return f.Count, nil
}

var _ Counter = (*JSONCounter)(nil)
