// Package input provides input adapters that turn external data into push requests.
package input

import (
	"context"

	"github.com/jmylchreest/toasty/internal/model"
)

// InputAdapter produces push requests from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin").
	Name() string

	// Read returns every push request the source currently holds.
	Read(ctx context.Context) ([]model.PushData, error)
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
