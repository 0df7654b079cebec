package cache

import "time"

// Entry is the snapshot of one remote resource as last seen by the sync
// layer. Readers always get a copy; the store is the only writer, so every
// watcher observes the same sequence of values.
type Entry struct {
	Value     any
	FetchedAt time.Time
	Err       error
	Loading   bool
}

// HasValue reports whether a real value has ever been stored for the entry.
// A fallback-seeded entry counts; a loading or error-only entry does not.
func (e Entry) HasValue() bool {
	return e.Value != nil
}

// Stale reports whether the entry was invalidated or never fetched.
func (e Entry) Stale() bool {
	return e.FetchedAt.IsZero()
}

// Store owns all cache entries. Implementations must be safe for concurrent
// use and must deliver Watch callbacks outside their internal locks.
type Store interface {
	// Get returns a snapshot of the entry and whether the key exists.
	Get(key string) (Entry, bool)
	// Set stores a fresh value, clearing Loading and Err.
	Set(key string, value any)
	// Seed stores a value without marking it fetched, so the next fetch
	// still runs. Used for prefetched fallbacks. A seed never overwrites a
	// real value.
	Seed(key string, value any)
	// SetLoading flips the loading flag, creating the entry if needed.
	SetLoading(key string, loading bool)
	// SetError records a fetch failure beside whatever value is present.
	SetError(key string, err error)
	// Invalidate marks the entry stale, keeping the value for display.
	Invalidate(key string)
	// Delete removes the entry entirely.
	Delete(key string)
	// Watch registers a callback invoked with a snapshot after every change
	// to the key. The returned cancel func removes the registration.
	Watch(key string, fn func(Entry)) (cancel func())
	// Stats reports hit/miss counters for observability.
	Stats() Stats
	Close() error
}

// Stats provides cache performance counters.
type Stats struct {
	TotalHits     int64 `json:"totalHits"`
	TotalMisses   int64 `json:"totalMisses"`
	TotalSets     int64 `json:"totalSets"`
	Invalidations int64 `json:"invalidations"`
	KeyCount      int   `json:"keyCount"`
}
