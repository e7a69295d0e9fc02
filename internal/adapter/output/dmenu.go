package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toasty/internal/model"
)

// DmenuFormatter formats toasts for dmenu/rofi/fuzzel, one per line.
type DmenuFormatter struct {
	separator  string
	descMaxLen int
	showAge    bool
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter() *DmenuFormatter {
	return &DmenuFormatter{
		separator:  " | ",
		descMaxLen: 80,
		showAge:    true,
	}
}

// Format writes toasts as "index | age | title: description" lines.
func (f *DmenuFormatter) Format(w io.Writer, toasts []model.Toast) error {
	for i, t := range toasts {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, t)); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, t model.Toast) string {
	parts := []string{fmt.Sprintf("%d", index)}

	if f.showAge && !t.CreatedAt.IsZero() {
		parts = append(parts, humanize.Time(t.CreatedAt))
	}

	content := t.Title
	if t.IsDanger() {
		content = "! " + content
	}
	if desc := t.DescriptionTruncated(f.descMaxLen); desc != "" {
		content += ": " + desc
	}
	parts = append(parts, content)

	return strings.Join(parts, f.separator)
}
