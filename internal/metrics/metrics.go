// Package metrics exposes Prometheus collectors for model lifecycle, encoding and ranking.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sentembed"

// Metrics holds the service collectors and the registry they are registered in.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ModelLoads        *prometheus.CounterVec
	ModelLoadDuration prometheus.Histogram
	ModelReady        prometheus.Gauge
	EncodedTexts      *prometheus.CounterVec
	EncodeDuration    *prometheus.HistogramVec
	Rankings          prometheus.Counter
	RankDuration      prometheus.Histogram
	ErrorsTotal       *prometheus.CounterVec
}

// New creates the collectors and registers them, plus Go runtime and process collectors,
// in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ModelLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "loads_total",
				Help:      "Model load attempts by outcome",
			},
			[]string{"status"},
		),
		ModelLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "load_duration_seconds",
				Help:      "Time spent constructing the embedding model",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		ModelReady: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "ready",
				Help:      "Model state (0=uninitialized, 1=ready)",
			},
		),
		EncodedTexts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "encode",
				Name:      "texts_total",
				Help:      "Texts encoded, by operation",
			},
			[]string{"operation"},
		),
		EncodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "encode",
				Name:      "duration_seconds",
				Help:      "Encode call duration, by operation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Rankings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rank",
				Name:      "requests_total",
				Help:      "Similarity rankings performed",
			},
		),
		RankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rank",
				Name:      "duration_seconds",
				Help:      "Similarity ranking duration",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "errors",
				Name:      "total",
				Help:      "Errors by operation and class",
			},
			[]string{"operation", "class"},
		),
	}

	m.registry.MustRegister(
		m.ModelLoads,
		m.ModelLoadDuration,
		m.ModelReady,
		m.EncodedTexts,
		m.EncodeDuration,
		m.Rankings,
		m.RankDuration,
		m.ErrorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordModelLoad records one load attempt.
func (m *Metrics) RecordModelLoad(d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ModelLoads.WithLabelValues("failure").Inc()
		return
	}
	m.ModelLoads.WithLabelValues("success").Inc()
	m.ModelLoadDuration.Observe(d.Seconds())
	m.ModelReady.Set(1)
}

// RecordEncode records a successful encode call over n texts.
func (m *Metrics) RecordEncode(operation string, n int, d time.Duration) {
	if m == nil {
		return
	}
	m.EncodedTexts.WithLabelValues(operation).Add(float64(n))
	m.EncodeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordRank records one ranking call.
func (m *Metrics) RecordRank(d time.Duration) {
	if m == nil {
		return
	}
	m.Rankings.Inc()
	m.RankDuration.Observe(d.Seconds())
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(operation, class string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(operation, class).Inc()
}
