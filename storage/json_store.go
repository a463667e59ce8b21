package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/richinex/tinytales/story"
)

// JSONStore keeps every story in one JSON object keyed by story ID.
// The whole file is read, changed in memory and rewritten on every
// mutation. Safe for concurrent use within one process.
type JSONStore struct {
	mu     sync.Mutex
	path   string
	atomic bool
}

// JSONOption configures a JSONStore or JSONCounter.
type JSONOption func(*jsonOptions)

type jsonOptions struct {
	atomic bool
}

// WithAtomicWrites replaces files via temp file and rename.
func WithAtomicWrites(enabled bool) JSONOption {
	return func(o *jsonOptions) {
		o.atomic = enabled
	}
}

func applyJSONOptions(opts []JSONOption) jsonOptions {
	o := jsonOptions{atomic: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewJSONStore creates a store backed by the file at path. The file and its
// directory are created on first write.
func NewJSONStore(path string, opts ...JSONOption) *JSONStore {
	o := applyJSONOptions(opts)
	return &JSONStore{path: path, atomic: o.atomic}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) load() (map[string]story.Record, error) {
	records := map[string]story.Record{}
	if _, err := readJSONFile(s.path, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = map[string]story.Record{}
	}
	for id, r := range records {
		r.ID = id
		records[id] = r
	}
	return records, nil
}

// Save writes record under its ID, replacing any existing record.
func (s *JSONStore) Save(ctx context.Context, record story.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := recordID(record)
	if id == "" {
		return "", errors.New("record has no id")
	}
	record.ID = id
	record.Metadata.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return "", err
	}
	records[id] = copyRecord(record)

	if err := writeJSONFile(s.path, records, s.atomic); err != nil {
		return "", fmt.Errorf("failed to save story %s: %w", id, err)
	}
	return id, nil
}

// Get returns the record with id or ErrNotFound.
func (s *JSONStore) Get(ctx context.Context, id string) (story.Record, error) {
	if err := ctx.Err(); err != nil {
		return story.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return story.Record{}, err
	}
	r, ok := records[id]
	if !ok {
		return story.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// List returns every record ordered by creation time, then ID.
func (s *JSONStore) List(ctx context.Context) ([]story.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	records, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]story.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

// Delete removes a record and reports whether it existed. The file is only
// rewritten when something was removed.
func (s *JSONStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := records[id]; !ok {
		return false, nil
	}
	delete(records, id)

	if err := writeJSONFile(s.path, records, s.atomic); err != nil {
		return false, fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	return true, nil
}

// Filter returns the records matching f, in List order.
func (s *JSONStore) Filter(ctx context.Context, f Filter) ([]story.Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterRecords(records, f), nil
}

// Close is a no-op; the file is not held open.
func (s *JSONStore) Close() error {
	return nil
}

var _ Store = (*JSONStore)(nil)
