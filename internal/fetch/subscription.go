package fetch

import (
	"sync"
	"time"

	"leave-sync/pkg/cache"
)

// Subscription is one consumer's handle on a key. Closing it stops the
// polling timer and detaches every OnChange callback; the cache entry itself
// survives so a remount starts warm.
type Subscription struct {
	c      *Coordinator
	id     int
	key    string
	loader Loader
	opts   Options
	inert  bool
	stop   chan struct{}

	closeOnce sync.Once
	watchMu   sync.Mutex
	cancels   []func()
}

// Key returns the subscribed key, empty for an inert subscription.
func (s *Subscription) Key() string {
	if s.inert {
		return ""
	}
	return s.key
}

// Snapshot returns the current entry. Inert subscriptions report an empty
// entry, mirroring "no request, no timer" for a null key.
func (s *Subscription) Snapshot() cache.Entry {
	if s.inert {
		return cache.Entry{}
	}
	ent, _ := s.c.store.Get(s.key)
	return ent
}

// OnChange registers a callback invoked with every new snapshot for the key.
// The returned cancel detaches just this callback; Close detaches them all.
func (s *Subscription) OnChange(fn func(cache.Entry)) (cancel func()) {
	if s.inert {
		return func() {}
	}
	c := s.c.store.Watch(s.key, fn)
	s.watchMu.Lock()
	s.cancels = append(s.cancels, c)
	s.watchMu.Unlock()
	return c
}

// Refresh issues a fetch immediately, bypassing the dedupe window. This is
// also the only way to retry after the bounded retry budget was exhausted.
func (s *Subscription) Refresh() {
	if s.inert {
		return
	}
	s.c.fetch(s, true)
}

func (s *Subscription) pollLoop() {
	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.c.fetch(s, false)
		case <-s.stop:
			return
		case <-s.c.ctx.Done():
			return
		}
	}
}

// Close stops polling and detaches all callbacks registered through this
// subscription. Idempotent.
func (s *Subscription) Close() {
	if s.inert {
		return
	}
	s.closeOnce.Do(func() {
		close(s.stop)

		s.c.mu.Lock()
		delete(s.c.subs, s.id)
		s.c.mu.Unlock()

		s.watchMu.Lock()
		cancels := s.cancels
		s.cancels = nil
		s.watchMu.Unlock()
		for _, cancel := range cancels {
			cancel()
		}
	})
}
