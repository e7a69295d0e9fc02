package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toasty/internal/model"
	"gopkg.in/yaml.v3"
)

// JSONFormatter formats toasts as a JSON array.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes toasts as an indented JSON array. An empty snapshot is
// written as [] rather than null.
func (f *JSONFormatter) Format(w io.Writer, toasts []model.Toast) error {
	if toasts == nil {
		toasts = []model.Toast{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toasts)
}

// YAMLFormatter formats toasts as a YAML document.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes toasts as a YAML sequence followed by a document separator,
// so consecutive snapshots form a valid multi-document stream.
func (f *YAMLFormatter) Format(w io.Writer, toasts []model.Toast) error {
	if toasts == nil {
		toasts = []model.Toast{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(toasts); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "---\n")
	return err
}
