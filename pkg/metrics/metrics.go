// Package metrics instruments the sync layer with Prometheus counters. All
// methods are nil-safe so library components can run without a registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	fetches          *prometheus.CounterVec
	dedupeSuppressed *prometheus.CounterVec
	staleDiscards    prometheus.Counter
	retries          *prometheus.CounterVec
	prefetches       *prometheus.CounterVec
	preloads         *prometheus.CounterVec
	mutations        *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavesync_fetches_total",
			Help: "Network fetches issued by the coordinator, by key and outcome.",
		}, []string{"key", "outcome"}),
		dedupeSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavesync_dedupe_suppressed_total",
			Help: "Fetches suppressed because one completed inside the dedupe window.",
		}, []string{"key"}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leavesync_stale_discards_total",
			Help: "Responses dropped because the session token changed in flight.",
		}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavesync_retries_total",
			Help: "Retry attempts after a failed fetch, by key.",
		}, []string{"key"}),
		prefetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavesync_prefetches_total",
			Help: "Background data prefetches, by key and outcome.",
		}, []string{"key", "outcome"}),
		preloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavesync_preloads_total",
			Help: "Component preloads, by name and outcome.",
		}, []string{"name", "outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavesync_mutations_total",
			Help: "Mutations executed, by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	registry.MustRegister(
		m.fetches,
		m.dedupeSuppressed,
		m.staleDiscards,
		m.retries,
		m.prefetches,
		m.preloads,
		m.mutations,
	)
	return m
}

// Handler exposes the registry for scraping, typically mounted by the host.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Fetch(key, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(key, outcome).Inc()
}

func (m *Metrics) DedupeSuppressed(key string) {
	if m == nil {
		return
	}
	m.dedupeSuppressed.WithLabelValues(key).Inc()
}

func (m *Metrics) StaleDiscard() {
	if m == nil {
		return
	}
	m.staleDiscards.Inc()
}

func (m *Metrics) Retry(key string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(key).Inc()
}

func (m *Metrics) Prefetch(key, outcome string) {
	if m == nil {
		return
	}
	m.prefetches.WithLabelValues(key, outcome).Inc()
}

func (m *Metrics) Preload(name, outcome string) {
	if m == nil {
		return
	}
	m.preloads.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) Mutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}
