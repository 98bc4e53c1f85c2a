package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "daycare"

// MetricsSnapshot is the JSON summary served to admins next to /metrics.
type MetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	DayViewsResolved         uint64    `json:"dayViewsResolved"`
	ChildUpdates             uint64    `json:"childUpdates"`
	EventsPublished          uint64    `json:"eventsPublished"`
	EventsFailed             uint64    `json:"eventsFailed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService owns a private Prometheus registry. A nil *MetricsService is
// valid and records nothing.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	cacheLookups    *prometheus.HistogramVec
	cacheWrites     prometheus.Histogram
	dayViews        *prometheus.CounterVec
	childUpdates    *prometheus.CounterVec
	events          *prometheus.CounterVec

	requestCount atomic.Uint64
	requestNanos atomic.Uint64
	cacheHits    atomic.Uint64
	cacheMisses  atomic.Uint64
	dayViewCount atomic.Uint64
	updateCount  atomic.Uint64
	eventsOK     atomic.Uint64
	eventsFailed atomic.Uint64
}

// NewMetricsService registers the HTTP, cache, day view and event collectors
// together with the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route template.",
	}, []string{"method", "route", "status"})

	m.cacheLookups = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "lookup_seconds",
		Help:      "Cache lookups by result.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"result"})

	m.cacheWrites = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "write_seconds",
		Help:      "Cache write latency.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	m.dayViews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "day_views_total",
		Help:      "Resolved child day views by display status.",
	}, []string{"status"})

	m.childUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "child_updates_total",
		Help:      "Writes to child day state by kind.",
	}, []string{"kind"})

	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "events_published_total",
		Help:      "Update events sent to the broker by outcome.",
	}, []string{"type", "outcome"})

	m.registry.MustRegister(
		m.requestDuration,
		m.requests,
		m.cacheLookups,
		m.cacheWrites,
		m.dayViews,
		m.childUpdates,
		m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: metricsNamespace}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler exposes the Prometheus exposition endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request under its route template.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.requests.WithLabelValues(method, route, code).Inc()
	m.requestCount.Add(1)
	m.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.cacheHits.Add(1)
	} else {
		m.cacheMisses.Add(1)
	}
	m.cacheLookups.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.Observe(duration.Seconds())
}

// RecordDayView counts a resolved day view. An empty status is recorded as "none".
func (m *MetricsService) RecordDayView(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "none"
	}
	m.dayViews.WithLabelValues(status).Inc()
	m.dayViewCount.Add(1)
}

// RecordChildUpdate counts a write to a child's day state.
func (m *MetricsService) RecordChildUpdate(kind string) {
	if m == nil {
		return
	}
	m.childUpdates.WithLabelValues(kind).Inc()
	m.updateCount.Add(1)
}

// RecordEventPublish counts a broker publish attempt.
func (m *MetricsService) RecordEventPublish(eventType string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.eventsFailed.Add(1)
	} else {
		m.eventsOK.Add(1)
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
}

// Snapshot aggregates the counters for the admin summary endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{GeneratedAt: time.Now().UTC()}
	}
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	requests := m.requestCount.Load()

	snap := MetricsSnapshot{
		CacheHits:        hits,
		CacheMisses:      misses,
		RequestsTotal:    requests,
		DayViewsResolved: m.dayViewCount.Load(),
		ChildUpdates:     m.updateCount.Load(),
		EventsPublished:  m.eventsOK.Load(),
		EventsFailed:     m.eventsFailed.Load(),
		Goroutines:       runtime.NumGoroutine(),
		GeneratedAt:      time.Now().UTC(),
	}
	if total := hits + misses; total > 0 {
		snap.CacheHitRatio = float64(hits) / float64(total)
	}
	if requests > 0 {
		snap.AverageRequestDurationMs = float64(m.requestNanos.Load()) / float64(requests) / float64(time.Millisecond)
	}
	return snap
}
