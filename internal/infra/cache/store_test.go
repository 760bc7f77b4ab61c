package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "leads")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "leads", `[{"id":"1"}]`))
	require.NoError(t, s.Set(ctx, "leads", `[{"id":"2"}]`))

	value, ok, err := s.Get(ctx, "leads")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"2"}]`, value)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "team", "[]"))
	require.NoError(t, s.Delete(ctx, "team"))

	_, ok, err := s.Get(ctx, "team")
	require.NoError(t, err)
	assert.False(t, ok)
}
