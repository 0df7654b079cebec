package prefetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrefetcher_DebounceCollapse(t *testing.T) {
	p := NewPrefetcher(zap.NewNop(), nil)
	defer p.Stop()

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "approvals data", nil
	}

	// Rapid hover/unhover/hover: three schedules, one fetch, timed from the
	// last call.
	p.Prefetch("approvals", fetch, 50*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	p.Prefetch("approvals", fetch, 50*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	p.Prefetch("approvals", fetch, 50*time.Millisecond)

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())

	value, ok := p.Data("approvals")
	require.True(t, ok)
	assert.Equal(t, "approvals data", value)
}

func TestPrefetcher_ShortCircuits(t *testing.T) {
	p := NewPrefetcher(zap.NewNop(), nil)
	defer p.Stop()

	var calls atomic.Int64
	release := make(chan struct{})
	slow := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "slow", nil
	}

	p.Prefetch("team", slow, time.Millisecond)
	require.Eventually(t, func() bool { return p.Status("team") == StatusLoading }, time.Second, time.Millisecond)

	// Already loading: a new call is a no-op, not a second request.
	p.Prefetch("team", slow, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())

	close(release)
	require.Eventually(t, func() bool { return p.IsPrefetched("team") }, time.Second, time.Millisecond)

	// Already succeeded: still a no-op.
	p.Prefetch("team", slow, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
}

func TestPrefetcher_InvalidateAllowsRefetch(t *testing.T) {
	p := NewPrefetcher(zap.NewNop(), nil)
	defer p.Stop()

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return calls.Load(), nil
	}

	p.Prefetch("team", fetch, time.Millisecond)
	require.Eventually(t, func() bool { return p.IsPrefetched("team") }, time.Second, time.Millisecond)

	p.Invalidate("team")
	assert.Equal(t, StatusIdle, p.Status("team"))
	_, ok := p.Data("team")
	assert.False(t, ok)

	p.Prefetch("team", fetch, time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestPrefetcher_FailureIsQuiet(t *testing.T) {
	p := NewPrefetcher(zap.NewNop(), nil)
	defer p.Stop()

	p.Prefetch("analytics", func(ctx context.Context) (any, error) {
		return nil, errors.New("upstream sulking")
	}, time.Millisecond)

	require.Eventually(t, func() bool { return p.Status("analytics") == StatusError }, time.Second, time.Millisecond)
	assert.False(t, p.IsPrefetched("analytics"))
	_, ok := p.Data("analytics")
	assert.False(t, ok)
}

func TestPrefetcher_StatusTransitions(t *testing.T) {
	p := NewPrefetcher(zap.NewNop(), nil)
	defer p.Stop()

	var mu sync.Mutex
	var seen []Status
	p.OnStatus(func(key string, status Status) {
		mu.Lock()
		seen = append(seen, status)
		mu.Unlock()
	})

	p.Prefetch("team", func(ctx context.Context) (any, error) {
		return "roster", nil
	}, time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, seen)
}

func TestPrefetcher_StopCancelsTimers(t *testing.T) {
	p := NewPrefetcher(zap.NewNop(), nil)

	var calls atomic.Int64
	p.Prefetch("team", func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	}, 30*time.Millisecond)

	p.Stop()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(0), calls.Load())
}
