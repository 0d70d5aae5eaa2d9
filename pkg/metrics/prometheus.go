// Package metrics provides Prometheus metrics for the brand site service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Chat
	chatReplies        *prometheus.CounterVec
	chatSessions       prometheus.Gauge
	chatRejectedSubmit *prometheus.CounterVec

	// Contact form
	contactSubmissions *prometheus.CounterVec
	validationFailures *prometheus.CounterVec

	// Record store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Writer queue
	writerQueueSize     prometheus.Gauge
	writerQueueCapacity prometheus.Gauge
	writerQueueRejected prometheus.Counter

	// Frame loop
	frameTicks    prometheus.Counter
	framePending  prometheus.Gauge
	sceneRequests prometheus.Counter

	// Errors by component
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors register on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "site",
		subsystem:        "web",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.chatReplies = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("chat_replies_total"),
		Help: "Canned chat replies by matched intent",
	}, []string{"intent"})

	m.chatSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("chat_sessions"),
		Help: "Open chat sessions",
	})

	m.chatRejectedSubmit = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("chat_rejected_submits_total"),
		Help: "Chat submits rejected before reaching the responder",
	}, []string{"reason"})

	m.contactSubmissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("contact_submissions_total"),
		Help: "Contact form submissions by outcome",
	}, []string{"outcome"})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("validation_failures_total"),
		Help: "Field validation failures by field and code",
	}, []string{"field", "code"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("record_store_latency_milliseconds"),
		Help:    "Record store call latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("record_store_errors_total"),
		Help: "Record store call failures",
	}, []string{"op"})

	m.writerQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("writer_queue_size"),
		Help: "Pending record store writes",
	})

	m.writerQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("writer_queue_capacity"),
		Help: "Capacity of the record store write queue",
	})

	m.writerQueueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("writer_queue_rejected_total"),
		Help: "Writes rejected because the queue was full or closed",
	})

	m.frameTicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("frame_ticks_total"),
		Help: "Frame loop dispatch cycles",
	})

	m.framePending = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("frame_pending"),
		Help: "Subscriptions and timers pending on the frame loop",
	})

	m.sceneRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("scene_frames_total"),
		Help: "Hero scene frames computed",
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_total"),
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name: m.name("memory_usage_bytes"),
		Help: "Allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name: m.name("goroutines"),
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name:    m.name("gc_pause_milliseconds"),
		Help:    "Average GC pause in milliseconds",
		Buckets: m.histogramBuckets,
	})
}

// RefreshInterval is how often gauges sampled from outside should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration {
	if globalManager == nil {
		return defaultRefreshInterval
	}
	return globalManager.RefreshInterval()
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func enabled() bool {
	return globalManager != nil && globalManager.enabled
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if enabled() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if enabled() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordChatReply counts a canned reply for the matched intent.
func RecordChatReply(intent string) {
	if enabled() {
		globalManager.chatReplies.WithLabelValues(intent).Inc()
	}
}

// UpdateChatSessions sets the open-session gauge.
func UpdateChatSessions(n int) {
	if enabled() {
		globalManager.chatSessions.Set(float64(n))
	}
}

// RecordChatRejected counts a rejected chat submit (busy, empty, unknown session).
func RecordChatRejected(reason string) {
	if enabled() {
		globalManager.chatRejectedSubmit.WithLabelValues(reason).Inc()
	}
}

// RecordContactSubmission counts a contact submission outcome.
func RecordContactSubmission(outcome string) {
	if enabled() {
		globalManager.contactSubmissions.WithLabelValues(outcome).Inc()
	}
}

// RecordValidationFailure counts one field validation failure.
func RecordValidationFailure(field, code string) {
	if enabled() {
		globalManager.validationFailures.WithLabelValues(field, code).Inc()
	}
}

// RecordStoreLatency observes a record store call.
func RecordStoreLatency(op string, latencyMs float64) {
	if enabled() {
		globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// RecordStoreError counts a failed record store call.
func RecordStoreError(op string) {
	if enabled() {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// UpdateWriterQueueSize sets the pending-writes gauge.
func UpdateWriterQueueSize(n int) {
	if enabled() {
		globalManager.writerQueueSize.Set(float64(n))
	}
}

// UpdateWriterQueueCapacity sets the queue capacity gauge.
func UpdateWriterQueueCapacity(n int) {
	if enabled() {
		globalManager.writerQueueCapacity.Set(float64(n))
	}
}

// RecordWriterQueueRejected counts a write refused by the queue.
func RecordWriterQueueRejected() {
	if enabled() {
		globalManager.writerQueueRejected.Inc()
	}
}

// RecordFrameTick counts a frame loop dispatch cycle.
func RecordFrameTick() {
	if enabled() {
		globalManager.frameTicks.Inc()
	}
}

// UpdateFramePending sets the pending loop work gauge.
func UpdateFramePending(n int) {
	if enabled() {
		globalManager.framePending.Set(float64(n))
	}
}

// RecordSceneFrame counts a computed hero scene frame.
func RecordSceneFrame() {
	if enabled() {
		globalManager.sceneRequests.Inc()
	}
}

// RecordErrorByComponent counts an error attributed to a component.
func RecordErrorByComponent(component, errorType string) {
	if enabled() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if enabled() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	if enabled() {
		globalManager.systemGoroutineCount.Set(float64(n))
	}
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	if enabled() {
		globalManager.systemGCPauseTime.Observe(ms)
	}
}
