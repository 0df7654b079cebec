package prefetch

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"leave-sync/pkg/metrics"
)

// Preloader runs a one-shot initializer per logical name: think lazily
// constructed view components or expensive first-render setup. A name that
// ever succeeded never runs again; a failed name may be retried by a later
// Preload call.
type Preloader struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	status map[string]Status
	log    *zap.Logger
	mets   *metrics.Metrics
}

func NewPreloader(log *zap.Logger, mets *metrics.Metrics) *Preloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Preloader{
		timers: make(map[string]*time.Timer),
		status: make(map[string]Status),
		log:    log,
		mets:   mets,
	}
}

// Preload schedules init after delay. A second call for the same name before
// the delay elapses restarts the timer; only the most recent attempt fires.
// Names already loading or succeeded are left alone.
func (p *Preloader) Preload(name string, init func() error, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.status[name] {
	case StatusLoading, StatusSuccess:
		return
	}
	if t, ok := p.timers[name]; ok {
		t.Stop()
	}
	p.timers[name] = time.AfterFunc(delay, func() {
		p.run(name, init)
	})
}

func (p *Preloader) run(name string, init func() error) {
	p.mu.Lock()
	delete(p.timers, name)
	switch p.status[name] {
	case StatusLoading, StatusSuccess:
		p.mu.Unlock()
		return
	}
	p.status[name] = StatusLoading
	p.mu.Unlock()

	err := init()

	p.mu.Lock()
	if err != nil {
		p.status[name] = StatusError
	} else {
		p.status[name] = StatusSuccess
	}
	p.mu.Unlock()

	if err != nil {
		p.mets.Preload(name, "error")
		p.log.Warn("preload failed", zap.String("name", name), zap.Error(err))
		return
	}
	p.mets.Preload(name, "success")
}

// IsPreloaded reports whether the name's initializer completed successfully.
func (p *Preloader) IsPreloaded(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status[name] == StatusSuccess
}

// Status returns the current state for the name.
func (p *Preloader) Status(name string) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status[name]
}

// Stop cancels every pending timer. Preloads already running finish; their
// recorded status stays valid because the memoization outlives the host.
func (p *Preloader) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, t := range p.timers {
		t.Stop()
		delete(p.timers, name)
	}
}
