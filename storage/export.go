package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/richinex/tinytales/story"
)

// DefaultExportDir is where exported text files go unless told otherwise.
const DefaultExportDir = "exports"

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")

// ExportFilename returns "<Title_with_underscores>_<first 8 chars of id>.txt".
func ExportFilename(r story.Record) string {
	title := strings.TrimSpace(r.Metadata.Title)
	if title == "" {
		title = "Untitled Story"
	}

	id := recordID(r)
	if len(id) > 8 {
		id = id[:8]
	}
	return filenameReplacer.Replace(title) + "_" + id + ".txt"
}

// FormatText renders a record as plain text: a metadata header, a rule,
// then one block per page.
func FormatText(r story.Record) string {
	m := r.Metadata

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", m.Title)
	fmt.Fprintf(&b, "Genre: %s\n", m.Genre)
	fmt.Fprintf(&b, "Age Group: %s\n", m.AgeGroup)
	fmt.Fprintf(&b, "Created: %s\n", m.CreatedAt.Format(time.RFC3339))
	if m.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", m.Description)
	}
	b.WriteString("\n" + strings.Repeat("=", 50) + "\n\n")

	for _, p := range r.Pages {
		fmt.Fprintf(&b, "Page %d:\n%s\n\n", p.PageNumber, p.Content)
	}
	return b.String()
}

// ExportText writes r to dir as a text file and returns its path.
// The directory is created if needed.
func ExportText(r story.Record, dir string) (string, error) {
	if dir == "" {
		dir = DefaultExportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, ExportFilename(r))
	if err := os.WriteFile(path, []byte(FormatText(r)), 0o644); err != nil {
		return "", fmt.Errorf("failed to export story: %w", err)
	}
	return path, nil
}
