package registry

import (
	"context"
	"errors"

	"github.com/jmylchreest/toasty/internal/model"
)

// ErrNoScope is returned when a scoped operation finds no registry bound to
// its context.
var ErrNoScope = errors.New("no active toast registry in scope")

// ScopeError reports which scoped operation ran without a registry.
type ScopeError struct {
	Op string
}

func (e *ScopeError) Error() string {
	return e.Op + ": " + ErrNoScope.Error()
}

func (e *ScopeError) Unwrap() error {
	return ErrNoScope
}

type scopeKey struct{}

// NewContext returns a copy of ctx with r bound as the active registry.
func NewContext(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, scopeKey{}, r)
}

// FromContext returns the registry bound to ctx.
func FromContext(ctx context.Context) (*Registry, error) {
	return fromContext(ctx, "registry")
}

func fromContext(ctx context.Context, op string) (*Registry, error) {
	if ctx == nil {
		return nil, &ScopeError{Op: op}
	}
	r, ok := ctx.Value(scopeKey{}).(*Registry)
	if !ok || r == nil {
		return nil, &ScopeError{Op: op}
	}
	return r, nil
}

// Push appends a toast to the registry bound to ctx.
func Push(ctx context.Context, data model.PushData) (model.Toast, error) {
	r, err := fromContext(ctx, "push")
	if err != nil {
		return model.Toast{}, err
	}
	return r.Push(data), nil
}

// Dismiss removes a toast from the registry bound to ctx.
func Dismiss(ctx context.Context, id string) error {
	r, err := fromContext(ctx, "dismiss")
	if err != nil {
		return err
	}
	r.Dismiss(id)
	return nil
}

// Current returns the toasts of the registry bound to ctx.
func Current(ctx context.Context) ([]model.Toast, error) {
	r, err := fromContext(ctx, "current")
	if err != nil {
		return nil, err
	}
	return r.Current(), nil
}
