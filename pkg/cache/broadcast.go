package cache

import "sync"

// broadcaster fans entry snapshots out to per-key watchers. Both store
// implementations embed one; for the redis store the fan-out is
// process-local, which is fine because subscribers live in this process.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[string]map[int]func(Entry)
	nextID int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[string]map[int]func(Entry))}
}

func (b *broadcaster) watch(key string, fn func(Entry)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func(Entry))
	}
	b.subs[key][id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		if m := b.subs[key]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(b.subs, key)
			}
		}
		b.mu.Unlock()
	}
}

// notify must be called without any store lock held; callbacks may call back
// into the store.
func (b *broadcaster) notify(key string, ent Entry) {
	b.mu.Lock()
	fns := make([]func(Entry), 0, len(b.subs[key]))
	for _, fn := range b.subs[key] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ent)
	}
}

func (b *broadcaster) clear() {
	b.mu.Lock()
	b.subs = make(map[string]map[int]func(Entry))
	b.mu.Unlock()
}
