package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector tracks performance metrics across the system. Each
// collector owns its registry so several can coexist in one test binary.
type MetricsCollector struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	operationTimes  *prometheus.HistogramVec
	errorCount      prometheus.Counter
	slugCollisions  prometheus.Counter
	orphansRepaired prometheus.Counter

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by method, route template and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		operationTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_operation_duration_seconds",
			Help:    "Latency of internal operations such as post creation and reconciliation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_errors_total",
			Help: "Requests that ended in a server-side error",
		}),
		slugCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_slug_collisions_total",
			Help: "Slug allocations that needed a numeric suffix or a retry",
		}),
		orphansRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_orphaned_comments_fixed_total",
			Help: "Comments repointed to the sentinel user",
		}),
		systemStartTime: time.Now(),
	}

	mc.registry.MustRegister(
		mc.httpRequests,
		mc.httpDuration,
		mc.operationTimes,
		mc.errorCount,
		mc.slugCollisions,
		mc.orphansRepaired,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return mc
}

func (mc *MetricsCollector) ObserveRequest(method, route string, status int, duration time.Duration) {
	mc.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	mc.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.errorCount.Inc()
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationTimes.WithLabelValues(operationName).Observe(duration.Seconds())
}

func (mc *MetricsCollector) AddSlugCollisions(n int) {
	mc.slugCollisions.Add(float64(n))
}

func (mc *MetricsCollector) AddOrphansFixed(n int) {
	mc.orphansRepaired.Add(float64(n))
}

func (mc *MetricsCollector) Uptime() time.Duration {
	return time.Since(mc.systemStartTime)
}

func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler exposes the collector's registry in the Prometheus text format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}
