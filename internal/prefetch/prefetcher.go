package prefetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"leave-sync/pkg/metrics"
)

// FetchFunc loads the data for one key. It must honor ctx cancellation.
type FetchFunc func(ctx context.Context) (any, error)

// StatusFunc observes task transitions; the dashboard uses it to keep the
// per-tab prefetch status in the reducer current.
type StatusFunc func(key string, status Status)

// Prefetcher performs debounced, deduped background fetches keyed by
// resource name. Rapid hover/unhover/hover sequences collapse to one timer,
// and a key already loading or succeeded is never fetched again until
// invalidated.
type Prefetcher struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	status  map[string]Status
	results map[string]any

	onStatus StatusFunc
	log      *zap.Logger
	mets     *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
}

func NewPrefetcher(log *zap.Logger, mets *metrics.Metrics) *Prefetcher {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Prefetcher{
		timers:  make(map[string]*time.Timer),
		status:  make(map[string]Status),
		results: make(map[string]any),
		log:     log,
		mets:    mets,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnStatus registers the transition observer. Must be called before the
// first Prefetch; the dashboard wires it during construction.
func (p *Prefetcher) OnStatus(fn StatusFunc) {
	p.mu.Lock()
	p.onStatus = fn
	p.mu.Unlock()
}

// Prefetch schedules fetchFn after delay, debounced per key. Short-circuits
// when the key is already loading or has a result.
func (p *Prefetcher) Prefetch(key string, fetchFn FetchFunc, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.status[key] {
	case StatusLoading, StatusSuccess:
		return
	}
	if t, ok := p.timers[key]; ok {
		t.Stop()
	}
	p.timers[key] = time.AfterFunc(delay, func() {
		p.run(key, fetchFn)
	})
}

func (p *Prefetcher) run(key string, fetchFn FetchFunc) {
	p.mu.Lock()
	delete(p.timers, key)
	switch p.status[key] {
	case StatusLoading, StatusSuccess:
		p.mu.Unlock()
		return
	}
	p.status[key] = StatusLoading
	notify := p.onStatus
	p.mu.Unlock()

	if notify != nil {
		notify(key, StatusLoading)
	}

	value, err := fetchFn(p.ctx)

	p.mu.Lock()
	var status Status
	if err != nil {
		status = StatusError
		p.status[key] = StatusError
	} else {
		status = StatusSuccess
		p.status[key] = StatusSuccess
		p.results[key] = value
	}
	notify = p.onStatus
	p.mu.Unlock()

	if err != nil {
		p.mets.Prefetch(key, "error")
		// A failed prefetch is never surfaced; the real fetch proceeds
		// normally when the tab activates.
		p.log.Debug("prefetch failed", zap.String("key", key), zap.Error(err))
	} else {
		p.mets.Prefetch(key, "success")
	}
	if notify != nil {
		notify(key, status)
	}
}

// Data returns the prefetched value for the key, if one succeeded.
func (p *Prefetcher) Data(key string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.results[key]
	return v, ok
}

// IsPrefetched reports whether a prefetch for the key succeeded.
func (p *Prefetcher) IsPrefetched(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status[key] == StatusSuccess
}

// Status returns the current task state for the key.
func (p *Prefetcher) Status(key string) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status[key]
}

// Invalidate drops the result and resets the key to idle so the next
// Prefetch call fetches again.
func (p *Prefetcher) Invalidate(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[key]; ok {
		t.Stop()
		delete(p.timers, key)
	}
	delete(p.results, key)
	delete(p.status, key)
}

// Stop cancels all pending timers and aborts in-flight fetches. Safe to call
// more than once.
func (p *Prefetcher) Stop() {
	p.mu.Lock()
	for key, t := range p.timers {
		t.Stop()
		delete(p.timers, key)
	}
	p.mu.Unlock()
	p.cancel()
}
