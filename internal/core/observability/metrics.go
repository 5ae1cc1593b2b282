// Package observability holds the app-level Prometheus metric helpers.
package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	modelLatencySeconds *prometheus.HistogramVec
	cacheOpTotal        *prometheus.CounterVec
	cacheOpDuration     *prometheus.HistogramVec
	cacheResults        *prometheus.CounterVec
	renderDuration      *prometheus.HistogramVec
	usageDroppedTotal   prometheus.Counter
	buildInfo           *prometheus.GaugeVec
}

var (
	mu  sync.RWMutex
	cur *metricSet
)

// Init wires the metric set into the given registerer. Passing a nil
// registerer or enabled=false turns every helper into a no-op.
func Init(reg prometheus.Registerer, enabled bool) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || reg == nil {
		cur = nil
		return
	}

	m := &metricSet{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
			},
			[]string{"method", "route", "status"},
		),
		modelLatencySeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "model_latency_seconds",
				Help:    "Latency of generative model calls in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"provider"},
		),
		cacheOpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_op_total",
				Help: "Cache operations by op and outcome.",
			},
			[]string{"op", "outcome"},
		),
		cacheOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "redis_operation_duration_seconds",
				Help:    "Duration of Redis operations in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"op"},
		),
		cacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_results_total",
				Help: "Cache results by outcome.",
			},
			[]string{"outcome"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "render_duration_seconds",
				Help:    "Duration of meme card rendering in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"source"},
		),
		usageDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "usage_events_dropped_total",
				Help: "Usage records dropped because the queue was full.",
			},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "app_build_info",
				Help: "Build information for the binary.",
			},
			[]string{"version"},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.modelLatencySeconds,
		m.cacheOpTotal,
		m.cacheOpDuration,
		m.cacheResults,
		m.renderDuration,
		m.usageDroppedTotal,
		m.buildInfo,
	)
	cur = m
}

func get() *metricSet {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	m := get()
	if m == nil {
		return
	}
	st := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	m.httpRequestDuration.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveModelLatency(provider string, durationSeconds float64) {
	m := get()
	if m == nil {
		return
	}
	m.modelLatencySeconds.WithLabelValues(provider).Observe(durationSeconds)
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	m := get()
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cacheOpTotal.WithLabelValues(op, outcome).Inc()
	m.cacheOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

func IncCacheHit() {
	if m := get(); m != nil {
		m.cacheResults.WithLabelValues("hit").Inc()
	}
}

func IncCacheMiss() {
	if m := get(); m != nil {
		m.cacheResults.WithLabelValues("miss").Inc()
	}
}

func ObserveRender(source string, durationSeconds float64) {
	if m := get(); m != nil {
		m.renderDuration.WithLabelValues(source).Observe(durationSeconds)
	}
}

func IncUsageDropped() {
	if m := get(); m != nil {
		m.usageDroppedTotal.Inc()
	}
}

func ExposeBuildInfo(version string) {
	m := get()
	if m == nil {
		return
	}
	if version == "" {
		version = "dev"
	}
	m.buildInfo.WithLabelValues(version).Set(1)
}
