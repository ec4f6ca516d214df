// Package metrics exposes prometheus instrumentation for rule generation.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	MetricsNamespace         = "mcskg"
	MetricsSubsystemRules    = "rules"
	MetricsSubsystemPipeline = "pipeline"
	MetricsSubsystemWatch    = "watch"

	MetricsVersionLabel = "version"
)

// Stage names used as the "stage" label.
const (
	StageClassify   = "classify"
	StageSpecialize = "specialize"
	StageTranslate  = "translate"
	StagePublish    = "publish"
	StageStore      = "store"
)

type Metrics interface {
	GetRegistry() *prometheus.Registry

	ObserveClassified(templateID int)
	IncrementFailures(stage, reason string)
	ObserveStageDuration(stage string, elapsed float64)
	ObserveBatch(size, failed int)
	IncrementWatchRuns()
}

type InstanceInfo struct {
	Version string
}

type metrics struct {
	registry *prometheus.Registry

	info prometheus.Gauge

	classifiedTotal *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	stageTime       *prometheus.HistogramVec

	batchesTotal     prometheus.Counter
	batchStatements  prometheus.Histogram
	batchFailedTotal prometheus.Counter
	watchRunsTotal   prometheus.Counter
}

// NewMetrics creates a collector set on its own registry.
func NewMetrics(info InstanceInfo) Metrics {
	m := &metrics{}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: MetricsNamespace,
	}))
	m.registry.MustRegister(collectors.NewGoCollector())

	m.info = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   MetricsNamespace,
		Name:        "info",
		Help:        "The mcskg build version.",
		ConstLabels: map[string]string{MetricsVersionLabel: info.Version},
	})
	m.info.Set(1)
	m.registry.MustRegister(m.info)

	m.classifiedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemRules,
		Name:      "classified_total",
		Help:      "The total number of statements classified, by template id.",
	}, []string{"template"})
	m.registry.MustRegister(m.classifiedTotal)

	m.failuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "failures_total",
		Help:      "The total number of statements that failed, by stage and reason.",
	}, []string{"stage", "reason"})
	m.registry.MustRegister(m.failuresTotal)

	m.stageTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystemPipeline,
			Name:      "stage_time_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"stage"},
	)
	m.registry.MustRegister(m.stageTime)

	m.batchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "batches_total",
		Help:      "The total number of statement batches processed.",
	})
	m.registry.MustRegister(m.batchesTotal)

	m.batchStatements = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "batch_statements",
		Help:      "Number of statements per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
	m.registry.MustRegister(m.batchStatements)

	m.batchFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPipeline,
		Name:      "batch_failed_statements_total",
		Help:      "The total number of statements skipped inside batches.",
	})
	m.registry.MustRegister(m.batchFailedTotal)

	m.watchRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemWatch,
		Name:      "runs_total",
		Help:      "The total number of regeneration runs triggered by file changes.",
	})
	m.registry.MustRegister(m.watchRunsTotal)

	return m
}

func (m *metrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

func (m *metrics) ObserveClassified(templateID int) {
	if m != nil {
		m.classifiedTotal.With(prometheus.Labels{"template": strconv.Itoa(templateID)}).Inc()
	}
}

func (m *metrics) IncrementFailures(stage, reason string) {
	if m != nil {
		m.failuresTotal.With(prometheus.Labels{"stage": stage, "reason": reason}).Inc()
	}
}

func (m *metrics) ObserveStageDuration(stage string, elapsed float64) {
	if m != nil {
		m.stageTime.With(prometheus.Labels{"stage": stage}).Observe(elapsed)
	}
}

func (m *metrics) ObserveBatch(size, failed int) {
	if m != nil {
		m.batchesTotal.Inc()
		m.batchStatements.Observe(float64(size))
		m.batchFailedTotal.Add(float64(failed))
	}
}

func (m *metrics) IncrementWatchRuns() {
	if m != nil {
		m.watchRunsTotal.Inc()
	}
}
