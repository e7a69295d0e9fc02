package registry

import (
	"context"
	"testing"

	"github.com/jmylchreest/toasty/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_NoRegistry(t *testing.T) {
	ctx := context.Background()

	_, err := FromContext(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoScope)

	_, err = Push(ctx, model.PushData{Title: "nope"})
	assert.ErrorIs(t, err, ErrNoScope)

	err = Dismiss(ctx, "x")
	assert.ErrorIs(t, err, ErrNoScope)

	_, err = Current(ctx)
	assert.ErrorIs(t, err, ErrNoScope)
}

func TestScope_ErrorNamesOperation(t *testing.T) {
	_, err := Push(context.Background(), model.PushData{Title: "nope"})

	var scopeErr *ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "push", scopeErr.Op)
	assert.Contains(t, err.Error(), "push:")
}

func TestScope_NilRegistryIsNoScope(t *testing.T) {
	ctx := NewContext(context.Background(), nil)

	_, err := Current(ctx)
	assert.ErrorIs(t, err, ErrNoScope)
}

func TestScope_BoundRegistry(t *testing.T) {
	r := New()
	defer r.Close()
	ctx := NewContext(context.Background(), r)

	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, r, got)

	toast, err := Push(ctx, model.PushData{Title: "Saved"})
	require.NoError(t, err)
	assert.Equal(t, model.VariantDefault, toast.Variant)

	current, err := Current(ctx)
	require.NoError(t, err)
	require.Len(t, current, 1)

	require.NoError(t, Dismiss(ctx, toast.ID))
	require.NoError(t, Dismiss(ctx, toast.ID))
	assert.Equal(t, 0, r.Count())
}

func TestScope_InnerScopeShadowsOuter(t *testing.T) {
	outer := New()
	inner := New()
	defer outer.Close()
	defer inner.Close()

	ctx := NewContext(context.Background(), outer)
	innerCtx := NewContext(ctx, inner)

	_, err := Push(innerCtx, model.PushData{Title: "inner"})
	require.NoError(t, err)

	assert.Equal(t, 0, outer.Count())
	assert.Equal(t, 1, inner.Count())
}
