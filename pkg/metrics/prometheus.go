// Package metrics provides Prometheus metrics for the tactile service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Recognition
	samplesProcessed   prometheus.Counter
	samplesDropped     prometheus.Counter
	recognitionLatency prometheus.Histogram
	gesturesFired      *prometheus.CounterVec
	gesturesSuppressed *prometheus.CounterVec
	playbackFailures   *prometheus.CounterVec
	mappingCount       prometheus.Gauge
	engineRunning      prometheus.Gauge

	// Sample queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec

	// Sensor transport
	sensorMessages      prometheus.Counter
	sensorDecodeErrors  prometheus.Counter
	rendererConnections prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tactile",
		subsystem:        "engine",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.samplesProcessed = m.counter("samples_processed_total", "Motion samples run through a recognition pass")
	m.samplesDropped = m.counter("samples_dropped_total", "Motion samples received while the engine was stopped")
	m.recognitionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recognition_latency_milliseconds",
		Help:        "Duration of one recognition pass including dispatch",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.gesturesFired = m.counterVec("gestures_fired_total", "Gestures that matched and dispatched an effect", "gesture", "effect")
	m.gesturesSuppressed = m.counterVec("gestures_suppressed_total", "Mappings skipped because their gesture was cooling down", "gesture")
	m.playbackFailures = m.counterVec("playback_failures_total", "Effects the haptic renderer failed to play", "effect")
	m.mappingCount = m.gauge("mappings", "Registered gesture mappings")
	m.engineRunning = m.gauge("running", "1 while the engine is running")

	m.queueSize = m.gauge("queue_size", "Samples waiting for the recognition worker")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the sample queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue fill ratio (0-1)")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Samples rejected by the queue", "reason")

	m.sensorMessages = m.counter("sensor_messages_total", "Sensor transport messages received")
	m.sensorDecodeErrors = m.counter("sensor_decode_errors_total", "Sensor transport messages that failed to decode")
	m.rendererConnections = m.gauge("renderer_connections", "Clients attached to the haptic renderer")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// Recognition.

// RecordSampleProcessed counts one recognition pass and its latency.
func RecordSampleProcessed(latencyMs float64) {
	globalManager.samplesProcessed.Inc()
	globalManager.recognitionLatency.Observe(latencyMs)
}

// RecordSampleDropped counts a sample delivered to a stopped engine.
func RecordSampleDropped() {
	globalManager.samplesDropped.Inc()
}

// RecordGestureFired counts a dispatch.
func RecordGestureFired(gesture, effect string) {
	globalManager.gesturesFired.WithLabelValues(gesture, effect).Inc()
}

// RecordGestureSuppressed counts a mapping skipped by debounce.
func RecordGestureSuppressed(gesture string) {
	globalManager.gesturesSuppressed.WithLabelValues(gesture).Inc()
}

// RecordPlaybackFailure counts a failed play request.
func RecordPlaybackFailure(effect string) {
	globalManager.playbackFailures.WithLabelValues(effect).Inc()
}

// UpdateMappingCount sets the number of registered mappings.
func UpdateMappingCount(count int) {
	globalManager.mappingCount.Set(float64(count))
}

// UpdateEngineRunning sets the running gauge.
func UpdateEngineRunning(running bool) {
	if running {
		globalManager.engineRunning.Set(1)
		return
	}
	globalManager.engineRunning.Set(0)
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueueError counts a rejected sample.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// Transports.

// RecordSensorMessage counts a transport message.
func RecordSensorMessage() {
	globalManager.sensorMessages.Inc()
}

// RecordSensorDecodeError counts an undecodable transport message.
func RecordSensorDecodeError() {
	globalManager.sensorDecodeErrors.Inc()
}

// UpdateRendererConnections sets the number of attached renderer clients.
func UpdateRendererConnections(count int) {
	globalManager.rendererConnections.Set(float64(count))
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
