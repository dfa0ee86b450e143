// Package metrics provides Prometheus metrics for the rewards service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Engine
	tasksGenerated  *prometheus.CounterVec
	taskBatches     *prometheus.CounterVec
	tasksCompleted  prometheus.Counter
	rewardsPaid     *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	wheelSpins      *prometheus.CounterVec
	fraudVerdicts   *prometheus.CounterVec
	fraudRiskScore  prometheus.Histogram
	transactions    *prometheus.CounterVec

	// Sessions
	registeredUsers prometheus.Gauge
	suspendedUsers  prometheus.Gauge
	activeBatches   prometheus.Gauge

	// Leaderboard pipeline
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueRejected      *prometheus.CounterVec
	workerEvents       *prometheus.CounterVec
	workerLatency      prometheus.Histogram
	leaderboardUsers   prometheus.Gauge
	leaderboardLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // package-level recorders delegate here

// Custom registry to keep default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals

func init() { //nolint:gochecknoinits
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "goldedge",
		subsystem:        "rewards",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen
	auto := promauto.With(m.registry)

	m.tasksGenerated = auto.NewCounterVec(
		m.counterOpts("tasks_generated_total", "Tasks generated by daily batches, by tier"),
		[]string{"tier"},
	)
	m.taskBatches = auto.NewCounterVec(
		m.counterOpts("task_batches_total", "Daily task batch requests by source (fresh or cache)"),
		[]string{"source"},
	)
	m.tasksCompleted = auto.NewCounter(
		m.counterOpts("tasks_completed_total", "Tasks reported completed by users"),
	)
	m.rewardsPaid = auto.NewCounterVec(
		m.counterOpts("rewards_paid_kes_total", "KES credited to users, by source"),
		[]string{"source"},
	)
	m.recommendations = auto.NewCounterVec(
		m.counterOpts("recommendations_total", "Recommendations emitted, by kind"),
		[]string{"kind"},
	)
	m.wheelSpins = auto.NewCounterVec(
		m.counterOpts("wheel_spins_total", "Lucky wheel spins, by outcome"),
		[]string{"outcome"},
	)
	m.fraudVerdicts = auto.NewCounterVec(
		m.counterOpts("fraud_assessments_total", "Transaction risk assessments, by verdict"),
		[]string{"verdict"},
	)
	m.fraudRiskScore = auto.NewHistogram(
		m.histogramOpts("fraud_risk_score", "Distribution of transaction risk scores",
			[]float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}),
	)
	m.transactions = auto.NewCounterVec(
		m.counterOpts("transactions_total", "Wallet transactions, by kind and resulting status"),
		[]string{"kind", "status"},
	)

	m.registeredUsers = auto.NewGauge(m.gaugeOpts("registered_users", "Users with a session"))
	m.suspendedUsers = auto.NewGauge(m.gaugeOpts("suspended_users", "Users currently suspended"))
	m.activeBatches = auto.NewGauge(m.gaugeOpts("active_task_batches", "Users holding a task batch for today"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("reward_queue_size", "Reward events waiting in the queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("reward_queue_enqueued_total", "Reward events accepted by the queue"))
	m.queueRejected = auto.NewCounterVec(
		m.counterOpts("reward_queue_rejected_total", "Reward events refused by the queue, by reason"),
		[]string{"reason"},
	)
	m.workerEvents = auto.NewCounterVec(
		m.counterOpts("worker_events_total", "Reward events handled by workers, by outcome"),
		[]string{"outcome"},
	)
	m.workerLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_milliseconds", "Time to apply one reward event", m.histogramBuckets),
	)
	m.leaderboardUsers = auto.NewGauge(m.gaugeOpts("leaderboard_users", "Users ranked on the earnings leaderboard"))
	m.leaderboardLatency = auto.NewHistogramVec(
		m.histogramOpts("leaderboard_operation_milliseconds", "Leaderboard operation latency", m.histogramBuckets),
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that ended in an error", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordTasksGenerated adds n generated tasks for tier.
func RecordTasksGenerated(tier string, n int) {
	globalManager.tasksGenerated.WithLabelValues(tier).Add(float64(n))
}

// RecordTaskBatch counts a daily batch request served from source.
func RecordTaskBatch(source string) {
	globalManager.taskBatches.WithLabelValues(source).Inc()
}

// RecordTaskCompleted increments the completed tasks counter.
func RecordTaskCompleted() {
	globalManager.tasksCompleted.Inc()
}

// RecordRewardPaid adds amount KES credited from source.
func RecordRewardPaid(source string, amount float64) {
	if amount <= 0 {
		return
	}
	globalManager.rewardsPaid.WithLabelValues(source).Add(amount)
}

// RecordRecommendation counts an emitted recommendation.
func RecordRecommendation(kind string) {
	globalManager.recommendations.WithLabelValues(kind).Inc()
}

// RecordWheelSpin counts a spin by outcome ("win" or "lose").
func RecordWheelSpin(outcome string) {
	globalManager.wheelSpins.WithLabelValues(outcome).Inc()
}

// RecordFraudAssessment records a verdict and its risk score.
func RecordFraudAssessment(safe bool, score float64) {
	verdict := "unsafe"
	if safe {
		verdict = "safe"
	}
	globalManager.fraudVerdicts.WithLabelValues(verdict).Inc()
	globalManager.fraudRiskScore.Observe(score)
}

// RecordTransaction counts a wallet transaction.
func RecordTransaction(kind, status string) {
	globalManager.transactions.WithLabelValues(kind, status).Inc()
}

// UpdateRegisteredUsers sets the registered users gauge.
func UpdateRegisteredUsers(count int) {
	globalManager.registeredUsers.Set(float64(count))
}

// UpdateSuspendedUsers sets the suspended users gauge.
func UpdateSuspendedUsers(count int) {
	globalManager.suspendedUsers.Set(float64(count))
}

// UpdateActiveBatches sets the number of users holding today's batch.
func UpdateActiveBatches(count int) {
	globalManager.activeBatches.Set(float64(count))
}

// UpdateQueueSize sets the reward queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue counts an accepted reward event.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a refused reward event.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordWorkerEvent counts a reward event handled by a worker.
func RecordWorkerEvent(outcome string) {
	globalManager.workerEvents.WithLabelValues(outcome).Inc()
}

// RecordWorkerLatency records the time to apply one reward event.
func RecordWorkerLatency(ms float64) {
	globalManager.workerLatency.Observe(ms)
}

// UpdateLeaderboardUsers sets the number of ranked users.
func UpdateLeaderboardUsers(count int) {
	globalManager.leaderboardUsers.Set(float64(count))
}

// RecordLeaderboardLatency records a leaderboard operation latency.
func RecordLeaderboardLatency(operation string, ms float64) {
	globalManager.leaderboardLatency.WithLabelValues(operation).Observe(ms)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

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

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

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
