package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"sensordigest/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncIngestTotal(result string)
	IncNotificationsSent(kind string)
	IncNotificationFailures(kind string)
	IncDigestRuns(outcome string)
	ObserveSweepDuration(duration time.Duration)
	IncPipelineErrors(entrypoint, kind string)
}

type MetricsProvider struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
	ingestTotal          *prometheus.CounterVec
	notificationsSent    *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	digestRuns           *prometheus.CounterVec
	sweepDuration        prometheus.Histogram
	pipelineErrors       *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncIngestTotal(result string) {
	m.ingestTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncNotificationsSent(kind string) {
	m.notificationsSent.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncNotificationFailures(kind string) {
	m.notificationFailures.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncDigestRuns(outcome string) {
	m.digestRuns.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveSweepDuration(duration time.Duration) {
	m.sweepDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPipelineErrors(entrypoint, kind string) {
	m.pipelineErrors.WithLabelValues(entrypoint, kind).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sensordigest_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sensordigest_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sensordigest_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sensordigest_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		ingestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sensordigest_ingest_total",
			Help: "Ingested readings by result",
		}, []string{"result"}),

		notificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sensordigest_notifications_sent_total",
			Help: "Emails handed to the mail transport by kind",
		}, []string{"kind"}),

		notificationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sensordigest_notification_failures_total",
			Help: "Emails the mail transport rejected by kind",
		}, []string{"kind"}),

		digestRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sensordigest_digest_runs_total",
			Help: "Digest checks by outcome",
		}, []string{"outcome"}),

		sweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sensordigest_sweep_duration_seconds",
			Help:    "Duration of scheduled sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		pipelineErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sensordigest_pipeline_errors_total",
			Help: "Failed ingest and sweep steps by failure kind",
		}, []string{"entrypoint", "kind"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncIngestTotal(_ string)                          {}
func (n *noopMetrics) IncNotificationsSent(_ string)                    {}
func (n *noopMetrics) IncNotificationFailures(_ string)                 {}
func (n *noopMetrics) IncDigestRuns(_ string)                           {}
func (n *noopMetrics) ObserveSweepDuration(_ time.Duration)             {}
func (n *noopMetrics) IncPipelineErrors(_, _ string)                    {}
