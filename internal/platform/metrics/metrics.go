// Package metrics exposes Prometheus metrics for the sync loop.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quotesync"

// SyncMetrics records reconciliation cycles. It implements app.CycleObserver.
type SyncMetrics struct {
	registry *prometheus.Registry

	cycles    *prometheus.CounterVec
	conflicts prometheus.Counter
	duration  prometheus.Histogram
	quotes    prometheus.Gauge
	lastSync  prometheus.Gauge
}

// New creates SyncMetrics on a private registry that also carries the Go and
// process collectors.
func New() *SyncMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &SyncMetrics{
		registry: reg,
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Reconciliation cycles by outcome.",
		}, []string{"outcome", "conflicted"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "conflicts_total",
			Help:      "Cycles in which the remote version replaced a local category.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of reconciliation cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "quotes",
			Help:      "Quotes held by the store after the last cycle.",
		}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle.",
		}),
	}

	reg.MustRegister(m.cycles, m.conflicts, m.duration, m.quotes, m.lastSync)

	return m
}

// ObserveCycle records one finished cycle.
func (m *SyncMetrics) ObserveCycle(outcome string, conflicted bool, duration time.Duration, quotes int) {
	m.cycles.WithLabelValues(outcome, strconv.FormatBool(conflicted)).Inc()
	m.duration.Observe(duration.Seconds())
	m.quotes.Set(float64(quotes))

	if conflicted {
		m.conflicts.Inc()
	}

	if outcome == "synced" || outcome == "synced_conflicted" {
		m.lastSync.SetToCurrentTime()
	}
}

// SetQuotes updates the store gauge outside of a cycle, e.g. after an add.
func (m *SyncMetrics) SetQuotes(n int) {
	m.quotes.Set(float64(n))
}

// Registry exposes the underlying registry for additional collectors.
func (m *SyncMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
