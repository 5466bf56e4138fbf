// Package metrics provides Prometheus metrics for the castaway simulation engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric the simulation drivers record.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Simulation throughput
	scenariosGenerated prometheus.Counter
	rostersScored      prometheus.Counter
	priceUpdates       prometheus.Counter
	runsTotal          *prometheus.CounterVec
	runDuration        *prometheus.HistogramVec

	// Replacement market
	replacements    prometheus.Counter
	zeroViable      prometheus.Counter
	viableOptions   prometheus.Histogram
	mergeValidRatio prometheus.Gauge

	// Queue Metrics
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerActiveCount prometheus.Gauge
	jobLatency        prometheus.Histogram
	jobErrors         prometheus.Counter

	errorsByComponent *prometheus.CounterVec
}

var (
	globalMu      sync.RWMutex
	globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "castaway",
		subsystem:        "simulation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

// SetGlobal replaces the manager behind the package-level Record helpers.
func SetGlobal(m *Manager) {
	if m == nil {
		return
	}
	globalMu.Lock()
	globalManager = m
	globalMu.Unlock()
}

func global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scenariosGenerated = m.counter("scenarios_generated_total", "Total number of scenarios generated")
	m.rostersScored = m.counter("rosters_scored_total", "Total number of roster seasons scored")
	m.priceUpdates = m.counter("price_updates_total", "Total number of episode repricings")
	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "runs_total",
		Help: "Simulation driver runs by driver and outcome",
	}, []string{"driver", "outcome"})
	m.runDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "run_duration_seconds",
		Help:    "Wall time of simulation driver runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"driver"})

	m.replacements = m.counter("replacements_total", "Total number of roster replacements made")
	m.zeroViable = m.counter("zero_viable_total", "Eliminations that left no viable replacement")
	m.viableOptions = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "viable_options",
		Help:    "Viable replacement options per elimination",
		Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12, 16, 24},
	})
	m.mergeValidRatio = m.gauge("merge_valid_ratio", "Last observed share of tribe-valid merge rosters within budget")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueSize = m.gauge("queue_size", "Jobs currently queued")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently running")
	m.jobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "job_latency_seconds",
		Help:    "Time to run one simulation job",
		Buckets: m.histogramBuckets,
	})
	m.jobErrors = m.counter("job_errors_total", "Total number of failed jobs")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_component_total",
		Help: "Total number of errors by component",
	}, []string{"component", "error_type"})
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// RecordScenarioGenerated increments the scenarios counter.
func RecordScenarioGenerated() {
	if m := global(); m.enabled {
		m.scenariosGenerated.Inc()
	}
}

// RecordRosterScored adds n scored roster seasons.
func RecordRosterScored(n int) {
	if m := global(); m.enabled {
		m.rostersScored.Add(float64(n))
	}
}

// RecordPriceUpdate increments the repricing counter.
func RecordPriceUpdate() {
	if m := global(); m.enabled {
		m.priceUpdates.Inc()
	}
}

// RecordRun records one driver run and its duration in seconds.
func RecordRun(driver, outcome string, seconds float64) {
	if m := global(); m.enabled {
		m.runsTotal.WithLabelValues(driver, outcome).Inc()
		m.runDuration.WithLabelValues(driver).Observe(seconds)
	}
}

// RecordReplacement increments the replacements counter.
func RecordReplacement() {
	if m := global(); m.enabled {
		m.replacements.Inc()
	}
}

// RecordViableOptions observes the viable count for one elimination.
func RecordViableOptions(count int) {
	m := global()
	if !m.enabled {
		return
	}
	m.viableOptions.Observe(float64(count))
	if count == 0 {
		m.zeroViable.Inc()
	}
}

// UpdateMergeValidRatio sets the merge validity share in [0,1].
func UpdateMergeValidRatio(ratio float64) {
	if m := global(); m.enabled {
		m.mergeValidRatio.Set(ratio)
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if m := global(); m.enabled {
		m.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if m := global(); m.enabled {
		m.queueSize.Set(float64(size))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if m := global(); m.enabled {
		m.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if m := global(); m.enabled {
		m.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() {
	if m := global(); m.enabled {
		m.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	if m := global(); m.enabled {
		m.workerActiveCount.Set(float64(count))
	}
}

// RecordJobLatency observes one job's duration in seconds.
func RecordJobLatency(seconds float64) {
	if m := global(); m.enabled {
		m.jobLatency.Observe(seconds)
	}
}

// RecordJobError increments the failed job counter.
func RecordJobError() {
	if m := global(); m.enabled {
		m.jobErrors.Inc()
	}
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if m := global(); m.enabled {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the registry behind the package-level helpers.
func GetRegistry() *prometheus.Registry {
	return global().registry
}
