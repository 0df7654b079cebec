package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leave-sync/internal/session"
	"leave-sync/pkg/cache"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *session.Store, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore()
	sess := session.NewStore()
	sess.SetToken("token-1")
	c := NewCoordinator(store, sess)
	t.Cleanup(func() {
		c.Close()
		store.Close()
	})
	return c, sess, store
}

func countingLoader(calls *atomic.Int64, value any) Loader {
	return func(ctx context.Context) (any, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestCoordinator_InitialFetch(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var calls atomic.Int64
	sub := c.Subscribe("team", countingLoader(&calls, "roster"), Options{})
	defer sub.Close()

	require.Eventually(t, func() bool {
		return sub.Snapshot().Value == "roster"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
	assert.False(t, sub.Snapshot().Loading)
}

func TestCoordinator_Dedup(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var calls atomic.Int64
	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	opts := Options{DedupeWindow: 500 * time.Millisecond}
	var subs []*Subscription
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := c.Subscribe("team", loader, opts)
			subsMu.Lock()
			subs = append(subs, s)
			subsMu.Unlock()
		}()
	}
	wg.Wait()
	close(release)

	require.Eventually(t, func() bool {
		ent, _ := c.Store().Get("team")
		return ent.Value == "shared"
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int64(1), calls.Load(), "concurrent subscribes inside the window collapse to one request")
	for _, s := range subs {
		assert.Equal(t, "shared", s.Snapshot().Value)
		s.Close()
	}
}

var subsMu sync.Mutex

func TestCoordinator_StaleResponseDiscard(t *testing.T) {
	c, sess, _ := newTestCoordinator(t)

	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		<-release
		return "from the old session", nil
	}

	sub := c.Subscribe("team", loader, Options{})
	defer sub.Close()

	// Wait for the flight to be airborne, then rotate the token under it.
	require.Eventually(t, func() bool {
		return sub.Snapshot().Loading
	}, time.Second, 5*time.Millisecond)
	sess.SetToken("token-2")
	close(release)

	require.Eventually(t, func() bool {
		return !sub.Snapshot().Loading
	}, time.Second, 5*time.Millisecond)
	assert.False(t, sub.Snapshot().HasValue(), "a response that straddles a token change never lands")
}

func TestCoordinator_Polling(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var calls atomic.Int64
	sub := c.Subscribe("approvals", countingLoader(&calls, "queue"),
		Options{RefreshInterval: 200 * time.Millisecond})
	defer sub.Close()

	// Initial fetch plus exactly one tick lands inside one-and-a-half
	// intervals.
	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, 350*time.Millisecond, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCoordinator_PollingStopsOnClose(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var calls atomic.Int64
	sub := c.Subscribe("approvals", countingLoader(&calls, "queue"),
		Options{RefreshInterval: 30 * time.Millisecond})

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	sub.Close()

	settled := calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "no fetches after unsubscribe")
}

func TestCoordinator_Retry(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var calls atomic.Int64
	loader := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("offline")
	}

	sub := c.Subscribe("team", loader, Options{Retry: 1})
	defer sub.Close()

	require.Eventually(t, func() bool {
		return sub.Snapshot().Err != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(2), calls.Load(), "one retry after the failure, then stop")

	// Manual refresh is the only path back after the budget is spent.
	prev := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, prev, calls.Load())
	sub.Refresh()
	assert.Greater(t, calls.Load(), prev)
}

func TestCoordinator_FallbackSuppressesLoading(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		<-release
		return "fresh", nil
	}

	sub := c.Subscribe("team", loader, Options{Fallback: "prefetched", HasFallback: true})
	defer sub.Close()

	ent := sub.Snapshot()
	assert.Equal(t, "prefetched", ent.Value)
	assert.False(t, ent.Loading, "a prefetched value means no loading flash")

	close(release)
	require.Eventually(t, func() bool {
		return sub.Snapshot().Value == "fresh"
	}, time.Second, 5*time.Millisecond)
}

func TestCoordinator_InertKey(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var calls atomic.Int64
	sub := c.Subscribe("", countingLoader(&calls, "never"), Options{RefreshInterval: 10 * time.Millisecond})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), calls.Load(), "an empty key issues no requests and no timers")
	assert.False(t, sub.Snapshot().HasValue())
	sub.Refresh()
	assert.Equal(t, int64(0), calls.Load())
	sub.Close()
}

func TestCoordinator_VisibilityRevalidation(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var calls atomic.Int64
	sub := c.Subscribe("team", countingLoader(&calls, "roster"),
		Options{RevalidateOnVisible: true, DedupeWindow: 300 * time.Millisecond})
	defer sub.Close()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	signal := NewVisibilitySignal()
	c.WatchVisibility(signal)

	// Let the dedupe window from the initial fetch lapse.
	time.Sleep(320 * time.Millisecond)
	signal.Emit()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	// A second visibility event inside the window collapses away.
	signal.Emit()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCoordinator_OnChange(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	sub := c.Subscribe("team", countingLoader(new(atomic.Int64), "roster"), Options{})
	defer sub.Close()

	var mu sync.Mutex
	var seen []any
	cancel := sub.OnChange(func(ent cache.Entry) {
		mu.Lock()
		seen = append(seen, ent.Value)
		mu.Unlock()
	})
	defer cancel()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, v := range seen {
			if v == "roster" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestCoordinator_ForceRefreshWithoutSubscription(t *testing.T) {
	c, _, store := newTestCoordinator(t)

	store.Set("pendingUsers", "cached")
	c.ForceRefresh("pendingUsers")

	ent, _ := store.Get("pendingUsers")
	assert.True(t, ent.Stale(), "no live subscription means invalidate instead of refetch")
}
