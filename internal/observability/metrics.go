package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	writesTotal       *prometheus.CounterVec
	streakJobs        *prometheus.CounterVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	storeRetries      prometheus.Counter
}

// NewMetrics registers on its own registry so tests can build as many as they like.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		writesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_writes_total",
			Help: "Tracker writes by kind and outcome (accepted, rejected, pending).",
		}, []string{"kind", "outcome"}),
		streakJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "streak_jobs_total",
			Help: "Streak recompute jobs by outcome (updated, unchanged, failed, dropped).",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_cache_hits_total",
			Help: "Total user record cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_cache_misses_total",
			Help: "Total user record cache misses.",
		}),
		storeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_store_retries_total",
			Help: "Total store operations retried after a transient failure.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.writesTotal,
		m.streakJobs,
		m.cacheHits,
		m.cacheMisses,
		m.storeRetries,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched gin route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveWrite(kind, outcome string) {
	if m == nil {
		return
	}
	m.writesTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveStreakJob(outcome string) {
	if m == nil {
		return
	}
	m.streakJobs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) StoreRetry() {
	if m != nil {
		m.storeRetries.Inc()
	}
}
