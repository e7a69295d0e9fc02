package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jmylchreest/toasty/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testToasts() []model.Toast {
	now := time.Now()
	return []model.Toast{
		{ID: "01A", Title: "Saved", Variant: model.VariantDefault, CreatedAt: now},
		{ID: "01B", Title: "Error", Description: "upload failed", Variant: model.VariantDanger, CreatedAt: now},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format FormatType
		want   any
	}{
		{FormatJSON, &JSONFormatter{}},
		{FormatYAML, &YAMLFormatter{}},
		{FormatIDs, &IDsFormatter{}},
		{FormatDmenu, &DmenuFormatter{}},
		{FormatTable, &TableFormatter{}},
		{FormatPlain, &PlainFormatter{}},
		{"unknown", &PlainFormatter{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format, FormatterOptions{})
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestPlainFormatter_Default(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, testToasts()))

	assert.Equal(t, "[default] Saved\n[danger] Error - upload failed\n", buf.String())
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{
		Template: "{{.Index}} {{variantIcon .Variant}} {{upper .Title}} {{truncate 6 .Description}} ({{age .CreatedAt}})\n",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, testToasts()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 - SAVED  (now)", lines[0])
	assert.Equal(t, "2 ! ERROR upl... (now)", lines[1])
}

func TestPlainFormatter_InvalidTemplate(t *testing.T) {
	_, err := NewPlainFormatter(FormatterOptions{Template: "{{.Title"})
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, testToasts()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "01A", decoded[0]["id"])
	assert.Equal(t, "danger", decoded[1]["variant"])
	assert.NotContains(t, decoded[0], "description")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testToasts()))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "---\n"))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(strings.TrimSuffix(out, "---\n")), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Saved", decoded[0]["title"])
	assert.Equal(t, "upload failed", decoded[1]["description"])
}

func TestIDsFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testToasts()))
	assert.Equal(t, "01A\n01B\n", buf.String())
}

func TestDmenuFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter().Format(&buf, testToasts()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | now | Saved", lines[0])
	assert.Equal(t, "2 | now | ! Error: upload failed", lines[1])
}

func TestDmenuFormatter_FlattensAndTruncates(t *testing.T) {
	toasts := []model.Toast{
		{ID: "01A", Title: "t", Description: "line one\r\nline  two"},
		{ID: "01B", Title: "t", Description: strings.Repeat("é", 120)},
		{ID: "01C", Title: "t", Description: strings.Repeat("تم الحفظ ", 20)},
	}

	var buf bytes.Buffer
	f := NewDmenuFormatter()
	f.showAge = false
	require.NoError(t, f.Format(&buf, toasts))

	out := buf.String()
	assert.True(t, utf8.ValidString(out))

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1 | t: line one line two", lines[0])
	assert.Equal(t, "2 | t: "+strings.Repeat("é", 77)+"...", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "..."))
}

func TestPlainFormatter_TruncateMultibyte(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{Template: "{{truncate 6 .Description}}\n"})
	require.NoError(t, err)

	var buf bytes.Buffer
	toasts := []model.Toast{{ID: "01A", Title: "t", Description: "ééééééééé"}}
	require.NoError(t, f.Format(&buf, toasts))
	assert.Equal(t, "ééé...\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, testToasts()))

	out := buf.String()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "01A")
	assert.Contains(t, out, "upload failed")
	assert.Contains(t, out, "danger")
	assert.True(t, strings.HasSuffix(out, "╯\n"))
}

func TestTableFormatter_MultibyteDescription(t *testing.T) {
	toasts := []model.Toast{{ID: "01A", Title: "t", Description: strings.Repeat("é", 60), CreatedAt: time.Now()}}

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, toasts))
	assert.True(t, utf8.ValidString(buf.String()))
	assert.Contains(t, buf.String(), strings.Repeat("é", 37)+"...")
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, nil))
	assert.Empty(t, buf.String())
}
