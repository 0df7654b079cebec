// Package fetch keeps remote resources fresh. A Coordinator wraps keyed
// loaders with polling, revalidate-on-visible, dedupe, bounded retry, and
// the stale-response guard against session token changes. Values land in the
// cache store; subscribers observe them through watch callbacks.
package fetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"leave-sync/internal/session"
	"leave-sync/pkg/cache"
	"leave-sync/pkg/metrics"
)

// Loader fetches one resource. It must honor ctx cancellation.
type Loader func(ctx context.Context) (any, error)

// Options control one subscription.
type Options struct {
	// RefreshInterval re-runs the loader on a timer while subscribed.
	// Zero disables polling.
	RefreshInterval time.Duration
	// RevalidateOnVisible re-runs the loader when the host reports a
	// hidden-to-visible transition.
	RevalidateOnVisible bool
	// DedupeWindow suppresses a fetch when one was issued for the same key
	// less than the window ago. The suppressed caller reads the shared
	// result from the store.
	DedupeWindow time.Duration
	// Fallback seeds the entry before the first fetch resolves, so a
	// prefetched value never shows a loading flash. HasFallback
	// distinguishes "no fallback" from a nil one.
	Fallback    any
	HasFallback bool
	// Retry is the number of additional attempts after a failed fetch.
	Retry int
}

const (
	retryBaseDelay = 250 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

type Coordinator struct {
	store cache.Store
	sess  *session.Store
	mets  *metrics.Metrics
	log   *zap.Logger

	flight singleflight.Group

	mu         sync.Mutex
	lastIssued map[string]time.Time
	subs       map[int]*Subscription
	nextID     int
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc

	visOnce sync.Once
}

type Option func(*Coordinator)

func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.mets = m }
}

func NewCoordinator(store cache.Store, sess *session.Store, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		store:      store,
		sess:       sess,
		log:        zap.NewNop(),
		lastIssued: make(map[string]time.Time),
		subs:       make(map[int]*Subscription),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the backing cache store for view-model reads.
func (c *Coordinator) Store() cache.Store {
	return c.store
}

// Subscribe registers a loader for key and starts the initial fetch plus any
// configured polling. An empty key returns an inert subscription: no
// request, no timers, until the caller re-subscribes with a real key. That
// is the convention for resources whose key depends on another entry (the
// analytics key needs the team id).
func (c *Coordinator) Subscribe(key string, loader Loader, opts Options) *Subscription {
	s := &Subscription{c: c, key: key, loader: loader, opts: opts, stop: make(chan struct{})}
	if key == "" {
		s.inert = true
		return s
	}

	if opts.HasFallback {
		c.store.Seed(key, opts.Fallback)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		s.inert = true
		return s
	}
	s.id = c.nextID
	c.nextID++
	c.subs[s.id] = s
	c.mu.Unlock()

	go c.fetch(s, false)

	if opts.RefreshInterval > 0 {
		go s.pollLoop()
	}
	return s
}

// ForceRefresh re-fetches the given keys, bypassing the dedupe window. Keys
// with no live subscription are invalidated in the store instead, so the
// next subscriber starts from a stale entry. This is the reconciliation hook
// the mutation executor calls after a successful write.
func (c *Coordinator) ForceRefresh(keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if s := c.subscriptionFor(key); s != nil {
			c.fetch(s, true)
			continue
		}
		c.store.Invalidate(key)
	}
}

func (c *Coordinator) subscriptionFor(key string) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subs {
		if s.key == key {
			return s
		}
	}
	return nil
}

// fetch issues one load for the subscription's key. Synchronous: callers that
// must not block wrap it in a goroutine. Concurrent fetches for one key
// collapse through the dedupe window and singleflight; the suppressed
// callers observe the winner's result through the store.
func (c *Coordinator) fetch(s *Subscription, force bool) {
	key := s.key

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !force && s.opts.DedupeWindow > 0 {
		if last, ok := c.lastIssued[key]; ok && time.Since(last) < s.opts.DedupeWindow {
			c.mu.Unlock()
			c.mets.DedupeSuppressed(key)
			return
		}
	}
	c.lastIssued[key] = time.Now()
	c.mu.Unlock()

	c.flight.Do(key, func() (any, error) {
		c.runFetch(key, s.loader, s.opts)
		return nil, nil
	})
}

// runFetch performs the load with bounded retry, then applies the
// stale-response rule: the token captured before the call must still be the
// session's token when it resolves, or the result is dropped on the floor.
func (c *Coordinator) runFetch(key string, loader Loader, opts Options) {
	token := c.sess.Token()

	// Only flag loading when there is nothing to show; a prefetched or
	// previously fetched value keeps rendering while we revalidate.
	if ent, ok := c.store.Get(key); !ok || !ent.HasValue() {
		c.store.SetLoading(key, true)
	}

	var value any
	var err error
	backoff := retryBaseDelay
	for attempt := 0; ; attempt++ {
		value, err = loader(c.ctx)
		if err == nil || attempt >= opts.Retry || c.ctx.Err() != nil {
			break
		}
		c.mets.Retry(key)
		select {
		case <-time.After(backoff):
		case <-c.ctx.Done():
			return
		}
		backoff *= 2
		if backoff > retryMaxDelay {
			backoff = retryMaxDelay
		}
	}
	if c.ctx.Err() != nil {
		return
	}

	if c.sess.Token() != token {
		c.mets.StaleDiscard()
		c.log.Debug("discarding response from previous session", zap.String("key", key))
		c.store.SetLoading(key, false)
		return
	}

	if err != nil {
		c.mets.Fetch(key, "error")
		c.log.Warn("fetch failed", zap.String("key", key), zap.Error(err))
		c.store.SetError(key, err)
		return
	}
	c.mets.Fetch(key, "success")
	c.store.Set(key, value)
}

// NotifyVisible revalidates every subscription that opted into
// revalidate-on-visible. A poll tick racing the visibility event collapses
// through the dedupe window into a single request.
func (c *Coordinator) NotifyVisible() {
	c.mu.Lock()
	var subs []*Subscription
	for _, s := range c.subs {
		if s.opts.RevalidateOnVisible {
			subs = append(subs, s)
		}
	}
	c.mu.Unlock()

	for _, s := range subs {
		go c.fetch(s, false)
	}
}

// WatchVisibility consumes the source on a single shared goroutine for the
// coordinator's lifetime. Later calls are ignored; one listener bounds
// resource use no matter how many keys opt in.
func (c *Coordinator) WatchVisibility(src VisibilitySource) {
	c.visOnce.Do(func() {
		go func() {
			for {
				select {
				case _, ok := <-src.Visible():
					if !ok {
						return
					}
					c.NotifyVisible()
				case <-c.ctx.Done():
					return
				}
			}
		}()
	})
}

// Close stops all polling, the visibility listener, and any in-flight
// retries. Subscriptions become inert; no store writes happen afterwards.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := make([]*Subscription, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.subs = make(map[int]*Subscription)
	c.mu.Unlock()

	c.cancel()
	for _, s := range subs {
		s.Close()
	}
}
