package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/richinex/tinytales/story"
)

const maxTitleWidth = 40

var storyTableHeader = []string{"ID", "Title", "Genre", "Age Group", "Pages", "Created"}

// renderStoryTable writes one row per record.
func renderStoryTable(w io.Writer, records []story.Record) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		m := r.Metadata
		rows = append(rows, []string{
			r.ID,
			truncateString(m.Title, maxTitleWidth),
			string(m.Genre),
			string(m.AgeGroup),
			strconv.Itoa(m.TotalPages),
			m.CreatedAt.Local().Format(time.DateTime),
		})
	}

	table.Header(storyTableHeader)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
