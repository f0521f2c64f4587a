package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	store := testStore(t, filepath.Join(t.TempDir(), "kv.db"))

	_, ok, err := store.Get(ctx, "messages:alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "messages:alice", "first"))
	require.NoError(t, store.Set(ctx, "messages:alice", "second"))

	v, ok, err := store.Get(ctx, "messages:alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, store.Delete(ctx, "messages:alice"))
	_, ok, err = store.Get(ctx, "messages:alice")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.Ping(ctx))
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "allowed", "yes"))
	require.NoError(t, first.Close())

	second := testStore(t, path)
	v, ok, err := second.Get(ctx, "allowed")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "yes", v)
}
