// Package metrics exposes sync cycle telemetry as Prometheus collectors.
//
// A cycle is a short-lived process, so nothing is served over HTTP. When a
// textfile path is configured the registry is written in the text exposition
// format for the node exporter's textfile collector to pick up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "harvest"

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	// cycles counts finished cycles.
	// Labels: outcome (new, unchanged, empty, locked, failed)
	cycles *prometheus.CounterVec

	// degraded counts operations that fell back to a default.
	// Labels: operation (collect, extract_entities, summarize, merge_entities, audit, stats)
	degraded *prometheus.CounterVec

	entitiesInserted prometheus.Counter
	dedupHits        prometheus.Counter
	promptTokens     prometheus.Counter
	cycleDuration    prometheus.Histogram
	lastSuccess      prometheus.Gauge
}

// New registers a fresh set of collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Sync cycles by outcome",
		}, []string{"outcome"}),
		degraded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_operations_total",
			Help:      "Cycle operations that failed and fell back to a default",
		}, []string{"operation"}),
		entitiesInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_inserted_total",
			Help:      "Entity records added to the store",
		}),
		dedupHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_hits_total",
			Help:      "Cycles whose content fingerprint had already been processed",
		}),
		promptTokens: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_tokens_total",
			Help:      "Prompt tokens sent to the language model",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a sync cycle",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that persisted its state",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(outcome string, d time.Duration) {
	m.cycles.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(d.Seconds())
}

// Degraded records a failed operation.
func (m *Metrics) Degraded(operation string) {
	m.degraded.WithLabelValues(operation).Inc()
}

// EntitiesInserted adds n newly stored entities.
func (m *Metrics) EntitiesInserted(n int) {
	if n > 0 {
		m.entitiesInserted.Add(float64(n))
	}
}

// DedupHit records a skipped, already processed corpus.
func (m *Metrics) DedupHit() {
	m.dedupHits.Inc()
}

// PromptTokens adds n prompt tokens.
func (m *Metrics) PromptTokens(n int64) {
	if n > 0 {
		m.promptTokens.Add(float64(n))
	}
}

// Succeeded stamps the time of a successful cycle.
func (m *Metrics) Succeeded(at time.Time) {
	m.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes every collector to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: create directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
