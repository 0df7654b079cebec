package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore is the default Store: a mutex-guarded map of entries with a
// local watcher fan-out. Entries live for the store's lifetime; the dashboard
// works over a small bounded key set, and keeping a zero-subscriber entry
// means a remounted view hits warm data instead of a loading flash.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	bcast   *broadcaster

	hits          atomic.Int64
	misses        atomic.Int64
	sets          atomic.Int64
	invalidations atomic.Int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		bcast:   newBroadcaster(),
	}
}

func (m *MemoryStore) Get(key string) (Entry, bool) {
	m.mu.RLock()
	ent, ok := m.entries[key]
	m.mu.RUnlock()

	if ok && ent.HasValue() {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return ent, ok
}

func (m *MemoryStore) Set(key string, value any) {
	m.sets.Add(1)
	m.mu.Lock()
	ent := Entry{Value: value, FetchedAt: time.Now()}
	m.entries[key] = ent
	m.mu.Unlock()
	m.bcast.notify(key, ent)
}

func (m *MemoryStore) Seed(key string, value any) {
	m.mu.Lock()
	ent, ok := m.entries[key]
	if ok && ent.HasValue() {
		m.mu.Unlock()
		return
	}
	ent.Value = value
	m.entries[key] = ent
	m.mu.Unlock()
	m.bcast.notify(key, ent)
}

func (m *MemoryStore) SetLoading(key string, loading bool) {
	m.mu.Lock()
	ent := m.entries[key]
	ent.Loading = loading
	m.entries[key] = ent
	m.mu.Unlock()
	m.bcast.notify(key, ent)
}

func (m *MemoryStore) SetError(key string, err error) {
	m.mu.Lock()
	ent := m.entries[key]
	ent.Err = err
	ent.Loading = false
	m.entries[key] = ent
	m.mu.Unlock()
	m.bcast.notify(key, ent)
}

func (m *MemoryStore) Invalidate(key string) {
	m.invalidations.Add(1)
	m.mu.Lock()
	ent, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	ent.FetchedAt = time.Time{}
	m.entries[key] = ent
	m.mu.Unlock()
	m.bcast.notify(key, ent)
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	m.bcast.notify(key, Entry{})
}

func (m *MemoryStore) Watch(key string, fn func(Entry)) (cancel func()) {
	return m.bcast.watch(key, fn)
}

func (m *MemoryStore) Stats() Stats {
	m.mu.RLock()
	keys := len(m.entries)
	m.mu.RUnlock()

	return Stats{
		TotalHits:     m.hits.Load(),
		TotalMisses:   m.misses.Load(),
		TotalSets:     m.sets.Load(),
		Invalidations: m.invalidations.Load(),
		KeyCount:      keys,
	}
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]Entry)
	m.mu.Unlock()
	m.bcast.clear()
	return nil
}
