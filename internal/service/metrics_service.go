package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	storeDuration       *prometheus.HistogramVec
	storeErrors         *prometheus.CounterVec
	allocationAttempts  prometheus.Histogram
	allocationConflicts prometheus.Counter
	allocationFailures  prometheus.Counter
	cacheLatency        prometheus.Histogram
	cacheHitRatio       prometheus.Gauge
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter

	requestCount         uint64
	requestDurationTotal uint64
	storeCount           uint64
	storeDurationTotal   uint64
	allocationCount      uint64
	conflictCount        uint64
	failureCount         uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docstore_operation_duration_seconds",
			Help:    "Duration of document store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docstore_operation_errors_total",
			Help: "Document store operations that returned an error other than not found",
		}, []string{"backend", "operation"}),
		allocationAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "index_allocation_attempts",
			Help:    "Counter write attempts needed per index allocation",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		allocationConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "index_allocation_conflicts_total",
			Help: "Counter writes aborted by a concurrent allocation",
		}),
		allocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "index_allocation_failures_total",
			Help: "Allocations that returned an error",
		}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.storeDuration, m.storeErrors,
		m.allocationAttempts, m.allocationConflicts, m.allocationFailures,
		m.cacheLatency, m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreOperation implements docstore.Observer.
func (m *MetricsService) ObserveStoreOperation(backend, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil && !isNotFound(err) {
		m.storeErrors.WithLabelValues(backend, operation).Inc()
	}
	atomic.AddUint64(&m.storeCount, 1)
	atomic.AddUint64(&m.storeDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveAllocation implements repository.AllocationObserver.
func (m *MetricsService) ObserveAllocation(attempts, conflicts int, err error) {
	if m == nil {
		return
	}
	m.allocationAttempts.Observe(float64(attempts))
	m.allocationConflicts.Add(float64(conflicts))
	atomic.AddUint64(&m.allocationCount, 1)
	atomic.AddUint64(&m.conflictCount, uint64(conflicts))
	if err != nil {
		m.allocationFailures.Inc()
		atomic.AddUint64(&m.failureCount, 1)
	}
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

// Snapshot returns aggregated metrics suitable for the system endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	storeOps := atomic.LoadUint64(&m.storeCount)
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)

	snapshot := models.SystemMetrics{
		RequestsTotal:       requests,
		StoreOperations:     storeOps,
		IndexAllocations:    atomic.LoadUint64(&m.allocationCount),
		AllocationConflicts: atomic.LoadUint64(&m.conflictCount),
		AllocationFailures:  atomic.LoadUint64(&m.failureCount),
		CacheHits:           hits,
		CacheMisses:         misses,
		Goroutines:          runtime.NumGoroutine(),
		GeneratedAt:         time.Now().UTC(),
	}
	if requests > 0 {
		snapshot.AverageRequestDurationMs = averageMs(atomic.LoadUint64(&m.requestDurationTotal), requests)
	}
	if storeOps > 0 {
		snapshot.AverageStoreDurationMs = averageMs(atomic.LoadUint64(&m.storeDurationTotal), storeOps)
	}
	if total := hits + misses; total > 0 {
		snapshot.CacheHitRatio = float64(hits) / float64(total)
	}
	return snapshot
}

func averageMs(totalNanos, count uint64) float64 {
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
