package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toasty/internal/model"
)

// DefaultPlainTemplate renders one line per toast.
const DefaultPlainTemplate = "[{{.Variant}}] {{.Title}}{{if .Description}} - {{.Description}}{{end}}\n"

// PlainFormatter formats toasts as plain text using a text/template.
type PlainFormatter struct {
	template *template.Template
}

// templateData is the value each toast is rendered with.
type templateData struct {
	Index int // 1-based position in the snapshot
	model.Toast
}

// NewPlainFormatter creates a new plain text formatter.
// An empty template selects DefaultPlainTemplate.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	text := opts.Template
	if text == "" {
		text = DefaultPlainTemplate
	}

	tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid output template: %w", err)
	}
	return &PlainFormatter{template: tmpl}, nil
}

// Format writes each toast through the template.
func (f *PlainFormatter) Format(w io.Writer, toasts []model.Toast) error {
	for i, t := range toasts {
		if err := f.template.Execute(w, templateData{Index: i + 1, Toast: t}); err != nil {
			return err
		}
	}
	return nil
}

// templateFuncs returns helper functions available to output templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(maxLen int, s string) string {
			return model.Truncate(s, maxLen)
		},
		"age": func(t time.Time) string {
			if t.IsZero() {
				return "unknown"
			}
			return humanize.Time(t)
		},
		"upper": strings.ToUpper,
		"variantIcon": func(v model.Variant) string {
			if v == model.VariantDanger {
				return "!"
			}
			return "-"
		},
	}
}
