package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	t.Run("MissingKey", func(t *testing.T) {
		ent, ok := store.Get("team")
		assert.False(t, ok)
		assert.False(t, ent.HasValue())
	})

	t.Run("Set", func(t *testing.T) {
		store.Set("team", "roster")
		ent, ok := store.Get("team")
		require.True(t, ok)
		assert.Equal(t, "roster", ent.Value)
		assert.False(t, ent.FetchedAt.IsZero())
		assert.False(t, ent.Loading)
		assert.NoError(t, ent.Err)
	})

	t.Run("SetClearsError", func(t *testing.T) {
		store.SetError("team", errors.New("boom"))
		store.Set("team", "fresh")
		ent, _ := store.Get("team")
		assert.NoError(t, ent.Err)
		assert.Equal(t, "fresh", ent.Value)
	})
}

func TestMemoryStore_SeedDoesNotOverwrite(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Seed("approvals", "prefetched")
	ent, ok := store.Get("approvals")
	require.True(t, ok)
	assert.Equal(t, "prefetched", ent.Value)
	assert.True(t, ent.Stale(), "a seeded value is not a fetched value")

	store.Set("approvals", "real")
	store.Seed("approvals", "late prefetch")
	ent, _ = store.Get("approvals")
	assert.Equal(t, "real", ent.Value)
}

func TestMemoryStore_ErrorKeepsValue(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("team", "roster")
	store.SetError("team", errors.New("offline"))

	ent, _ := store.Get("team")
	assert.Equal(t, "roster", ent.Value, "stale value keeps rendering beside the error")
	assert.Error(t, ent.Err)
	assert.False(t, ent.Loading)
}

func TestMemoryStore_Invalidate(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("team", "roster")
	store.Invalidate("team")

	ent, ok := store.Get("team")
	require.True(t, ok)
	assert.True(t, ent.Stale())
	assert.Equal(t, "roster", ent.Value, "invalidation keeps the value for display")
}

func TestMemoryStore_Watch(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	var got []Entry
	cancel := store.Watch("team", func(ent Entry) {
		got = append(got, ent)
	})

	store.Set("team", "a")
	store.SetLoading("team", true)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Value)
	assert.True(t, got[1].Loading)

	cancel()
	store.Set("team", "b")
	assert.Len(t, got, 2, "cancelled watcher sees nothing")

	store.Set("other", "x")
	assert.Len(t, got, 2, "watcher is per key")
}

func TestMemoryStore_Stats(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Get("missing")
	store.Set("team", "roster")
	store.Get("team")
	store.Invalidate("team")

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalSets)
	assert.Equal(t, int64(1), stats.Invalidations)
	assert.Equal(t, 1, stats.KeyCount)
}

func TestAnalyticsKey(t *testing.T) {
	assert.Equal(t, "analytics:team-1", AnalyticsKey("team-1"))
	assert.Equal(t, "", AnalyticsKey(""), "no team id means no subscription")
}
