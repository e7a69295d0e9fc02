package output

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jmylchreest/toasty/internal/model"
)

// TableFormatter renders a snapshot as a bordered table.
type TableFormatter struct {
	descMaxLen int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{descMaxLen: 40}
}

// Format writes the toasts as a single table. An empty snapshot writes nothing.
func (f *TableFormatter) Format(w io.Writer, toasts []model.Toast) error {
	if len(toasts) == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "ID", "Variant", "Title", "Description", "Age"})

	for i, t := range toasts {
		tw.AppendRow(table.Row{
			i + 1,
			t.ID,
			t.Variant.String(),
			t.Title,
			t.DescriptionTruncated(f.descMaxLen),
			humanize.Time(t.CreatedAt),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
