package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jmylchreest/toasty/internal/model"
)

// maxLineSize caps a single JSON line.
const maxLineSize = 1024 * 1024

// ErrEmptyTitle is reported for entries without a title.
var ErrEmptyTitle = errors.New("title cannot be empty")

// StdinAdapter reads push requests from standard input.
// Accepted input is either a JSON array of entries or one JSON entry per line:
//
//	{"title": "Saved", "description": "Tender T-104 updated", "variant": "default"}
type StdinAdapter struct {
	reader io.Reader
	logger *slog.Logger
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter(logger *slog.Logger) *StdinAdapter {
	return NewStdinAdapterWithReader(os.Stdin, logger)
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader, logger *slog.Logger) *StdinAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdinAdapter{reader: r, logger: logger}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// entry is a push request in the wire format.
type entry struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
}

// Read consumes the whole input and returns the valid push requests.
// Invalid entries are skipped with a warning.
func (a *StdinAdapter) Read(ctx context.Context) ([]model.PushData, error) {
	data, err := io.ReadAll(a.reader)
	if err != nil {
		return nil, &AdapterError{Source: a.Name(), Message: "failed to read stdin", Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var entries []entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, &AdapterError{Source: a.Name(), Message: "failed to parse JSON input", Err: err}
		}
		return a.convertAll(entries), nil
	}

	var result []model.PushData
	err = a.Stream(ctx, bytes.NewReader(trimmed), func(d model.PushData) {
		result = append(result, d)
	})
	return result, err
}

// Stream reads JSON lines from r and calls fn for each valid entry as soon
// as it is decoded. Blank lines are ignored. Input that starts with '[' is
// decoded as a single JSON array, element by element. It returns when r is
// exhausted or ctx is done.
func (a *StdinAdapter) Stream(ctx context.Context, r io.Reader, fn func(model.PushData)) error {
	if r == nil {
		r = a.reader
	}

	br := bufio.NewReader(r)
	isArray, err := startsWithArray(br)
	if err != nil {
		return &AdapterError{Source: a.Name(), Message: "failed to read stdin", Err: err}
	}
	if isArray {
		return a.streamArray(ctx, br, fn)
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			a.logger.Warn("skipping malformed line", "line", lineNo, "error", err)
			continue
		}

		d, err := convertEntry(e)
		if err != nil {
			a.logger.Warn("skipping invalid entry", "line", lineNo, "error", err)
			continue
		}
		fn(d)
	}

	if err := scanner.Err(); err != nil {
		return &AdapterError{Source: a.Name(), Message: "failed to read stdin", Err: err}
	}
	return nil
}

// streamArray decodes a JSON array from r, calling fn per valid element.
func (a *StdinAdapter) streamArray(ctx context.Context, r io.Reader, fn func(model.PushData)) error {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return &AdapterError{Source: a.Name(), Message: "failed to parse JSON input", Err: err}
	}

	for i := 0; dec.More(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var e entry
		if err := dec.Decode(&e); err != nil {
			return &AdapterError{Source: a.Name(), Message: "failed to parse JSON input", Err: err}
		}

		d, err := convertEntry(e)
		if err != nil {
			a.logger.Warn("skipping invalid entry", "index", i, "error", err)
			continue
		}
		fn(d)
	}
	return nil
}

// startsWithArray skips leading whitespace in br and reports whether the
// next byte opens a JSON array. The byte is left unread.
func startsWithArray(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b == '[', br.UnreadByte()
	}
}

func (a *StdinAdapter) convertAll(entries []entry) []model.PushData {
	result := make([]model.PushData, 0, len(entries))
	for i, e := range entries {
		d, err := convertEntry(e)
		if err != nil {
			a.logger.Warn("skipping invalid entry", "index", i, "error", err)
			continue
		}
		result = append(result, d)
	}
	return result
}

// convertEntry validates a wire entry and converts it to push data.
func convertEntry(e entry) (model.PushData, error) {
	title := sanitizeString(e.Title)
	if title == "" {
		return model.PushData{}, ErrEmptyTitle
	}

	variant, err := model.ParseVariant(e.Variant)
	if err != nil {
		return model.PushData{}, err
	}

	return model.PushData{
		Title:       title,
		Description: sanitizeString(e.Description),
		Variant:     variant,
	}, nil
}

// sanitizeString strips control characters other than newlines and tabs.
func sanitizeString(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s))
}
