// SQLite story storage.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema details encapsulated
// - Pages kept as a JSON column so a re-save replaces the record wholesale

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/tinytales/story"
)

const storyCounterName = "story"

// SQLiteStore implements Store and Counter using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return newSQLiteStore(db)
}

// NewSQLiteInMemory creates an in-memory database (useful for testing).
func NewSQLiteInMemory() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	return newSQLiteStore(db)
}

func newSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS stories (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			genre TEXT NOT NULL,
			character_type TEXT NOT NULL,
			age_group TEXT NOT NULL,
			page_count_requested INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			total_pages INTEGER NOT NULL,
			request_id TEXT NOT NULL DEFAULT '',
			pages TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_stories_created
		ON stories(created_at, id);

		CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save writes record under its ID, replacing any existing record.
func (s *SQLiteStore) Save(ctx context.Context, record story.Record) (string, error) {
	id := recordID(record)
	if id == "" {
		return "", errors.New("record has no id")
	}

	pages := record.Pages
	if pages == nil {
		pages = []story.Page{}
	}
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return "", fmt.Errorf("failed to encode pages: %w", err)
	}

	m := record.Metadata
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO stories
		(id, title, genre, character_type, age_group, page_count_requested,
		 description, created_at, total_pages, request_id, pages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		m.Title,
		string(m.Genre),
		string(m.CharacterType),
		string(m.AgeGroup),
		m.PageCountRequested,
		m.Description,
		m.CreatedAt.UTC().Format(time.RFC3339Nano),
		m.TotalPages,
		m.RequestID,
		string(pagesJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save story: %w", err)
	}
	return id, nil
}

const selectStory = `
	SELECT id, title, genre, character_type, age_group, page_count_requested,
	       description, created_at, total_pages, request_id, pages
	FROM stories`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (story.Record, error) {
	var (
		r         story.Record
		genre     string
		character string
		age       string
		created   string
		pagesJSON string
	)
	err := row.Scan(&r.ID, &r.Metadata.Title, &genre, &character, &age,
		&r.Metadata.PageCountRequested, &r.Metadata.Description, &created,
		&r.Metadata.TotalPages, &r.Metadata.RequestID, &pagesJSON)
	if err != nil {
		return story.Record{}, err
	}

	r.Metadata.ID = r.ID
	r.Metadata.Genre = story.Genre(genre)
	r.Metadata.CharacterType = story.CharacterType(character)
	r.Metadata.AgeGroup = story.AgeGroup(age)

	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return story.Record{}, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	r.Metadata.CreatedAt = t

	if err := json.Unmarshal([]byte(pagesJSON), &r.Pages); err != nil {
		return story.Record{}, fmt.Errorf("failed to decode pages: %w", err)
	}
	return r, nil
}

// Get returns the record with id or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (story.Record, error) {
	row := s.db.QueryRowContext(ctx, selectStory+" WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return story.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return story.Record{}, fmt.Errorf("failed to load story: %w", err)
	}
	return r, nil
}

// List returns every record ordered by creation time, then ID.
func (s *SQLiteStore) List(ctx context.Context) ([]story.Record, error) {
	return s.query(ctx, Filter{})
}

// Filter returns the records matching f, in List order.
func (s *SQLiteStore) Filter(ctx context.Context, f Filter) ([]story.Record, error) {
	return s.query(ctx, f)
}

func (s *SQLiteStore) query(ctx context.Context, f Filter) ([]story.Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, string(f.Genre))
	}
	if f.AgeGroup != "" {
		where = append(where, "age_group = ?")
		args = append(args, string(f.AgeGroup))
	}
	if f.CharacterType != "" {
		where = append(where, "character_type = ?")
		args = append(args, string(f.CharacterType))
	}

	q := selectStory
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	records := []story.Record{} // Start with empty slice, not nil
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stories: %w", err)
	}

	// created_at is stored as text, so order in Go on the parsed times.
	sortRecords(records)
	return records, nil
}

// Delete removes a record and reports whether it existed.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete story: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete story: %w", err)
	}
	return n > 0, nil
}

// Next increments the story counter and returns the new value.
func (s *SQLiteStore) Next(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1`,
		storyCounterName)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	var value int
	if err := tx.QueryRowContext(ctx,
		"SELECT value FROM counters WHERE name = ?", storyCounterName).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return value, nil
}

// Current returns the counter value without changing it.
func (s *SQLiteStore) Current(ctx context.Context) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM counters WHERE name = ?", storyCounterName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return value, nil
}

var (
	_ Store   = (*SQLiteStore)(nil)
	_ Counter = (*SQLiteStore)(nil)
)
