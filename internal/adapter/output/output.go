// Package output provides output formatters for toast snapshots.
package output

import (
	"io"

	"github.com/jmylchreest/toasty/internal/model"
)

// Formatter formats toasts for output.
type Formatter interface {
	// Format writes formatted toasts to the writer.
	Format(w io.Writer, toasts []model.Toast) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
	FormatDmenu FormatType = "dmenu"
	FormatTable FormatType = "table"
)

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // text/template for plain output
}

// NewFormatter creates a formatter for the specified format type.
// Unknown formats fall back to plain text.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	case FormatDmenu:
		return NewDmenuFormatter(), nil
	case FormatTable:
		return NewTableFormatter(), nil
	default:
		return NewPlainFormatter(opts)
	}
}
