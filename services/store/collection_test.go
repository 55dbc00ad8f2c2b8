package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func entryID(e *entry) string {
	return e.ID
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	rb := NewRedisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = rb.Close() })
	return map[string]Backend{
		BackendMemory: NewMemoryBackend(),
		BackendFile:   fb,
		BackendRedis:  rb,
	}
}

func TestCollection_AddIsIdempotent(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := NewCollection(b, entryID)

			_, added, err := c.Add(ctx, "k", entry{ID: "m1", Count: 1})
			require.NoError(t, err)
			assert.True(t, added)

			existing, added, err := c.Add(ctx, "k", entry{ID: "m1", Count: 2})
			require.NoError(t, err)
			assert.False(t, added)
			assert.Equal(t, 1, existing.Count)

			items, err := c.List(ctx, "k")
			require.NoError(t, err)
			assert.Len(t, items, 1)
		})
	}
}

func TestCollection_RemoveMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := NewCollection(b, entryID)
			_, _, err := c.Add(ctx, "k", entry{ID: "a"})
			require.NoError(t, err)

			removed, err := c.Remove(ctx, "k", "missing")
			require.NoError(t, err)
			assert.False(t, removed)

			removed, err = c.Remove(ctx, "k", "a")
			require.NoError(t, err)
			assert.True(t, removed)

			ok, err := c.Exists(ctx, "k", "a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCollection_PersistsAcrossInstances(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, _, err := NewCollection(b, entryID).Add(ctx, "k", entry{ID: "a", Count: 3})
			require.NoError(t, err)

			found, err := NewCollection(b, entryID).Find(ctx, "k", "a")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, 3, found.Count)
		})
	}
}

func TestCollection_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(NewMemoryBackend(), entryID)
	_, _, err := c.Add(ctx, "user:1", entry{ID: "a"})
	require.NoError(t, err)

	items, err := c.List(ctx, "user:2")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestCollection_PrependAndUpdate(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(NewMemoryBackend(), entryID)
	for _, id := range []string{"a", "b", "c"} {
		_, _, err := c.Prepend(ctx, "k", entry{ID: id})
		require.NoError(t, err)
	}

	updated, err := c.Update(ctx, "k", "b", func(e *entry) { e.Count++ })
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 1, updated.Count)

	missing, err := c.Update(ctx, "k", "z", func(e *entry) { e.Count++ })
	require.NoError(t, err)
	assert.Nil(t, missing)

	items, err := c.List(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []entry{{ID: "c"}, {ID: "b", Count: 1}, {ID: "a"}}, items)
}

func TestCollection_UpsertAndReset(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(NewMemoryBackend(), entryID)
	inc := func(e *entry) { e.Count++ }

	_, err := c.Upsert(ctx, "k", entry{ID: "a"}, inc)
	require.NoError(t, err)
	res, err := c.Upsert(ctx, "k", entry{ID: "a"}, inc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	require.NoError(t, c.Reset(ctx, "k"))
	items, err := c.List(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCollection_Filter(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(NewMemoryBackend(), entryID)
	for i, id := range []string{"a", "b", "c", "d"} {
		_, _, err := c.Add(ctx, "k", entry{ID: id, Count: i})
		require.NoError(t, err)
	}
	res, err := c.Filter(ctx, "k", func(e *entry) bool { return e.Count%2 == 1 })
	require.NoError(t, err)
	assert.Equal(t, []entry{{ID: "b", Count: 1}, {ID: "d", Count: 3}}, res)
}

func TestFileBackend_MissingKey(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	data, err := b.Load(context.Background(), "watchlist:nobody")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisBackend_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	b := NewRedisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "cinebuzz:")
	defer func() { _ = b.Close() }()

	require.NoError(t, b.Save(context.Background(), "reviews", []byte(`[]`)))
	v, err := mr.Get("cinebuzz:reviews")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestFileBackend_Keys(t *testing.T) {
	ctx := context.Background()
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, "watchlist:u/1", []byte(`[]`)))
	require.NoError(t, b.Save(ctx, "reviews", []byte(`[]`)))

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"watchlist:u/1", "reviews"}, keys)
}
