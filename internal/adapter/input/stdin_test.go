package input

import (
	"context"
	"strings"
	"testing"

	"github.com/jmylchreest/toasty/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdinAdapter_Name(t *testing.T) {
	assert.Equal(t, "stdin", NewStdinAdapterWithReader(strings.NewReader(""), nil).Name())
}

func TestStdinAdapter_ReadArray(t *testing.T) {
	in := `[
		{"title": "Saved"},
		{"title": "Error", "description": "upload failed", "variant": "danger"},
		{"title": ""},
		{"title": "Odd", "variant": "purple"}
	]`

	got, err := NewStdinAdapterWithReader(strings.NewReader(in), nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.PushData{Title: "Saved", Variant: model.VariantDefault}, got[0])
	assert.Equal(t, "Error", got[1].Title)
	assert.Equal(t, "upload failed", got[1].Description)
	assert.Equal(t, model.VariantDanger, got[1].Variant)
}

func TestStdinAdapter_ReadLines(t *testing.T) {
	in := `{"title": "one"}

{"title": "two", "variant": "danger"}
not json
{"title": "three"}
`

	got, err := NewStdinAdapterWithReader(strings.NewReader(in), nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Title)
	assert.Equal(t, model.VariantDanger, got[1].Variant)
	assert.Equal(t, "three", got[2].Title)
}

func TestStdinAdapter_ReadEmpty(t *testing.T) {
	got, err := NewStdinAdapterWithReader(strings.NewReader("  \n"), nil).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStdinAdapter_ReadBadArray(t *testing.T) {
	_, err := NewStdinAdapterWithReader(strings.NewReader(`[{"title": }]`), nil).Read(context.Background())
	require.Error(t, err)

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "stdin", adapterErr.Source)
	assert.NotNil(t, adapterErr.Unwrap())
}

func TestStdinAdapter_StreamStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := NewStdinAdapterWithReader(strings.NewReader("{\"title\":\"a\"}\n{\"title\":\"b\"}\n"), nil)

	var got []string
	err := a.Stream(ctx, nil, func(d model.PushData) {
		got = append(got, d.Title)
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, got)
}

func TestStdinAdapter_StreamArray(t *testing.T) {
	in := `
	[
		{"title": "Saved"},
		{"title": ""},
		{"title": "Error", "variant": "danger"}
	]`
	a := NewStdinAdapterWithReader(strings.NewReader(in), nil)

	var got []model.PushData
	err := a.Stream(context.Background(), nil, func(d model.PushData) {
		got = append(got, d)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Saved", got[0].Title)
	assert.Equal(t, model.VariantDanger, got[1].Variant)
}

func TestStdinAdapter_StreamBadArray(t *testing.T) {
	a := NewStdinAdapterWithReader(strings.NewReader(`[{"title": "a"}, {"title": }]`), nil)

	var got []string
	err := a.Stream(context.Background(), nil, func(d model.PushData) {
		got = append(got, d.Title)
	})

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, []string{"a"}, got)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "ab\tc\nd", sanitizeString("  a\x00b\tc\nd\x1b "))
}

func TestAdapterError_NoCause(t *testing.T) {
	err := &AdapterError{Source: "stdin", Message: "boom"}
	assert.Equal(t, "boom", err.Error())
	assert.Nil(t, err.Unwrap())
}
