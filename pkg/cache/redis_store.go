package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	redisClient "github.com/redis/go-redis/v9"
)

// RedisStore keeps a write-through copy of every entry in Redis so a
// separate process (or a restarted one) starts from warm data instead of a
// cold cache. Decoded values, loading flags and errors stay in a local
// overlay; only the value payload and fetch time survive in Redis, because
// transient state is meaningless across processes.
type RedisStore struct {
	client  *redisClient.Client
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	entries map[string]Entry
	bcast   *broadcaster

	hits          atomic.Int64
	misses        atomic.Int64
	sets          atomic.Int64
	invalidations atomic.Int64
}

// persistedEntry is the Redis wire form of an entry.
type persistedEntry struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

func NewRedisStore(client *redisClient.Client, config Config) *RedisStore {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisStore{
		client:  client,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]Entry),
		bcast:   newBroadcaster(),
	}
}

func (r *RedisStore) buildKey(key string) string {
	return r.config.KeyPrefix + key
}

func (r *RedisStore) Get(key string) (Entry, bool) {
	r.mu.RLock()
	ent, ok := r.entries[key]
	r.mu.RUnlock()

	if ok && ent.HasValue() {
		r.hits.Add(1)
		return ent, true
	}

	// Warm start: fall back to whatever a previous run persisted. The value
	// comes back as raw JSON; DecodeValue handles both shapes.
	data, err := r.client.Get(r.ctx, r.buildKey(key)).Result()
	if err != nil {
		r.misses.Add(1)
		return ent, ok
	}
	var pe persistedEntry
	if err := json.Unmarshal([]byte(data), &pe); err != nil {
		r.misses.Add(1)
		return ent, ok
	}

	ent.Value = pe.Value
	ent.FetchedAt = pe.FetchedAt
	r.mu.Lock()
	r.entries[key] = ent
	r.mu.Unlock()

	r.hits.Add(1)
	return ent, true
}

func (r *RedisStore) Set(key string, value any) {
	r.sets.Add(1)
	ent := Entry{Value: value, FetchedAt: time.Now()}

	r.mu.Lock()
	r.entries[key] = ent
	r.mu.Unlock()

	if err := r.persist(key, ent); err != nil {
		fmt.Printf("Failed to persist cache key %s: %v\n", key, err)
	}
	r.bcast.notify(key, ent)
}

func (r *RedisStore) persist(key string, ent Entry) error {
	raw, err := json.Marshal(ent.Value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	data, err := json.Marshal(persistedEntry{Value: raw, FetchedAt: ent.FetchedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := r.client.Set(r.ctx, r.buildKey(key), data, r.config.ValueTTL).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Seed(key string, value any) {
	r.mu.Lock()
	ent, ok := r.entries[key]
	if ok && ent.HasValue() {
		r.mu.Unlock()
		return
	}
	ent.Value = value
	r.entries[key] = ent
	r.mu.Unlock()
	r.bcast.notify(key, ent)
}

func (r *RedisStore) SetLoading(key string, loading bool) {
	r.mu.Lock()
	ent := r.entries[key]
	ent.Loading = loading
	r.entries[key] = ent
	r.mu.Unlock()
	r.bcast.notify(key, ent)
}

func (r *RedisStore) SetError(key string, err error) {
	r.mu.Lock()
	ent := r.entries[key]
	ent.Err = err
	ent.Loading = false
	r.entries[key] = ent
	r.mu.Unlock()
	r.bcast.notify(key, ent)
}

func (r *RedisStore) Invalidate(key string) {
	r.invalidations.Add(1)
	r.mu.Lock()
	ent, ok := r.entries[key]
	if ok {
		ent.FetchedAt = time.Time{}
		r.entries[key] = ent
	}
	r.mu.Unlock()

	if err := r.client.Del(r.ctx, r.buildKey(key)).Err(); err != nil {
		fmt.Printf("Failed to invalidate redis cache key %s: %v\n", key, err)
	}
	if ok {
		r.bcast.notify(key, ent)
	}
}

func (r *RedisStore) Delete(key string) {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()

	if err := r.client.Del(r.ctx, r.buildKey(key)).Err(); err != nil {
		fmt.Printf("Failed to delete redis cache key %s: %v\n", key, err)
	}
	r.bcast.notify(key, Entry{})
}

func (r *RedisStore) Watch(key string, fn func(Entry)) (cancel func()) {
	return r.bcast.watch(key, fn)
}

func (r *RedisStore) Stats() Stats {
	r.mu.RLock()
	keys := len(r.entries)
	r.mu.RUnlock()

	return Stats{
		TotalHits:     r.hits.Load(),
		TotalMisses:   r.misses.Load(),
		TotalSets:     r.sets.Load(),
		Invalidations: r.invalidations.Load(),
		KeyCount:      keys,
	}
}

// HealthCheck verifies the Redis connection is alive.
func (r *RedisStore) HealthCheck() error {
	ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	r.cancel()
	r.bcast.clear()
	return r.client.Close()
}
