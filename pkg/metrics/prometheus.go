package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Outbox delivery outcomes.
const (
	DeliverySent   = "sent"
	DeliveryRetry  = "retry"
	DeliveryFailed = "failed"
)

// Manager owns every Prometheus metric the service exports.
// A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry
	goCollectors     bool

	dbQueries       *prometheus.HistogramVec
	dbErrors        *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	reportCache     *prometheus.CounterVec
	skippedRecords  prometheus.Counter
	remindersQueued *prometheus.CounterVec
	outboxDelivery  *prometheus.CounterVec
	certificates    prometheus.Counter
}

// NewManager creates a metrics manager on its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arff",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.goCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.dbQueries = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Database call latency by operation.",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.dbErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "db",
		Name:      "errors_total",
		Help:      "Database calls that returned an error.",
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status_code"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	m.reportCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "reports",
		Name:      "cache_requests_total",
		Help:      "Report cache lookups by result.",
	}, []string{"result"})

	m.skippedRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "reports",
		Name:      "skipped_records_total",
		Help:      "Firefighter records left out of a report for missing dates.",
	})

	m.remindersQueued = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "reminders",
		Name:      "enqueued_total",
		Help:      "Expiry reminders queued by validity kind.",
	}, []string{"kind"})

	m.outboxDelivery = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "outbox",
		Name:      "deliveries_total",
		Help:      "Outbox delivery attempts by result.",
	}, []string{"result"})

	m.certificates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "training",
		Name:      "certificates_issued_total",
		Help:      "Certificates issued on class completion.",
	})
}

// ObserveQuery records one database call.
func (m *Manager) ObserveQuery(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueries.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.dbErrors.WithLabelValues(op).Inc()
	}
}

// ObserveRequest records one HTTP request.
func (m *Manager) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordCacheLookup counts a report cache hit or miss.
func (m *Manager) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.reportCache.WithLabelValues(result).Inc()
}

// RecordSkipped counts records excluded from a report.
func (m *Manager) RecordSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedRecords.Add(float64(n))
}

// RecordReminder counts a queued reminder for kind (general or fire).
func (m *Manager) RecordReminder(kind string) {
	if m == nil {
		return
	}
	m.remindersQueued.WithLabelValues(kind).Inc()
}

// RecordDelivery counts an outbox attempt outcome.
func (m *Manager) RecordDelivery(result string) {
	if m == nil {
		return
	}
	m.outboxDelivery.WithLabelValues(result).Inc()
}

// RecordCertificate counts an issued certificate.
func (m *Manager) RecordCertificate() {
	if m == nil {
		return
	}
	m.certificates.Inc()
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
// A nil manager serves 404.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
