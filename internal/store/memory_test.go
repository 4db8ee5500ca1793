package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int]()

	_, err := s.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "a", 1))
	require.NoError(t, s.Save(ctx, "b", 2))
	require.NoError(t, s.Save(ctx, "a", 3))
	assert.Equal(t, 2, s.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, s.Keys())

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = s.Delete(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, s.Len())

	_, err = s.Delete(ctx, "b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CanceledSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore[string]()
	require.ErrorIs(t, s.Save(ctx, "a", "x"), context.Canceled)
	assert.Equal(t, 0, s.Len())
}
