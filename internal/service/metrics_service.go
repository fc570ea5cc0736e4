package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/ects-quest/internal/dto"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	solveAttempts   *prometheus.HistogramVec
	solveTotal      *prometheus.CounterVec
	levelsCompleted *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	verifications   *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
	requestCount   uint64
	solveCount     uint64
	solveFailures  uint64
	attemptTotal   uint64
	sessionGauge   int64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	solveAttempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solver_attempts",
		Help:    "Attempts used per solve",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 2500, 4500, 5000},
	}, []string{"level"})

	solveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_runs_total",
		Help: "Solver runs by level and outcome",
	}, []string{"level", "outcome"})

	levelsCompleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "levels_completed_total",
		Help: "Levels banked into session history",
	}, []string{"level"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_sessions_active",
		Help: "Sessions currently held in memory",
	})

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_runs_total",
		Help: "Level verification runs by status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, solveAttempts, solveTotal, levelsCompleted, activeSessions, verifications, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		solveAttempts:   solveAttempts,
		solveTotal:      solveTotal,
		levelsCompleted: levelsCompleted,
		activeSessions:  activeSessions,
		verifications:   verifications,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the collector registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveSolve records one solver run.
func (m *MetricsService) ObserveSolve(level, attempts int, solved bool) {
	if m == nil {
		return
	}
	lvl := strconv.Itoa(level)
	outcome := "solved"
	if !solved {
		outcome = "exhausted"
		atomic.AddUint64(&m.solveFailures, 1)
	}
	m.solveAttempts.WithLabelValues(lvl).Observe(float64(attempts))
	m.solveTotal.WithLabelValues(lvl, outcome).Inc()
	atomic.AddUint64(&m.solveCount, 1)
	atomic.AddUint64(&m.attemptTotal, uint64(attempts))
}

// ObserveLevelCompleted counts a banked level.
func (m *MetricsService) ObserveLevelCompleted(level int) {
	if m == nil {
		return
	}
	m.levelsCompleted.WithLabelValues(strconv.Itoa(level)).Inc()
}

// SetActiveSessions reports the in-memory session count.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
	atomic.StoreInt64(&m.sessionGauge, int64(n))
}

// ObserveVerification counts a finished verification run.
func (m *MetricsService) ObserveVerification(status string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(status).Inc()
}

// Snapshot returns aggregated metrics suitable for the stats endpoint.
func (m *MetricsService) Snapshot() dto.SystemMetrics {
	if m == nil {
		return dto.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	solves := atomic.LoadUint64(&m.solveCount)
	attempts := atomic.LoadUint64(&m.attemptTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgAttempts float64
	if solves > 0 {
		avgAttempts = float64(attempts) / float64(solves)
	}

	return dto.SystemMetrics{
		CacheHitRatio:   cacheRatio,
		RequestsTotal:   atomic.LoadUint64(&m.requestCount),
		SolvesTotal:     solves,
		SolveFailures:   atomic.LoadUint64(&m.solveFailures),
		AverageAttempts: avgAttempts,
		ActiveSessions:  int(atomic.LoadInt64(&m.sessionGauge)),
		Goroutines:      runtime.NumGoroutine(),
		GeneratedAt:     time.Now().UTC(),
	}
}
