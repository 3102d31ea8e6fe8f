// Package metrics exposes the tuner's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the tuner driver updates over
// the course of a round.
type Metrics struct {
	RoundsTotal          prometheus.Counter
	RoundDuration        prometheus.Histogram
	RoundFailuresTotal   prometheus.Counter

	ChoicesEvaluatedTotal prometheus.Gauge
	ChoicesSelectedTotal  prometheus.Gauge
	BudgetUsedBytes       prometheus.Gauge
	BudgetTotalBytes      prometheus.Gauge

	OperationsTotal        prometheus.CounterVec
	OperationDuration      prometheus.Histogram
	OperationFailuresTotal prometheus.CounterVec

	MVCCGatedScansTotal prometheus.Counter
}

// New creates and registers every collector, labeling them all with the
// tuner instance name so multiple tuners can share a Prometheus registry.
func New(instance string) *Metrics {
	labels := prometheus.Labels{"instance": instance}

	return &Metrics{
		RoundsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "indextuner",
			Subsystem:   "round",
			Name:        "total",
			Help:        "Total number of tuning rounds run",
			ConstLabels: labels,
		}),
		RoundDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "indextuner",
			Subsystem:   "round",
			Name:        "duration_seconds",
			Help:        "Histogram of tuning round durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		RoundFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "indextuner",
			Subsystem:   "round",
			Name:        "failures_total",
			Help:        "Total number of tuning rounds that ended in error or timeout",
			ConstLabels: labels,
		}),
		ChoicesEvaluatedTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "indextuner",
			Subsystem:   "evaluator",
			Name:        "choices_evaluated",
			Help:        "Number of choices the evaluator produced in the most recent round",
			ConstLabels: labels,
		}),
		ChoicesSelectedTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "indextuner",
			Subsystem:   "selector",
			Name:        "choices_selected",
			Help:        "Number of choices the selector accepted in the most recent round",
			ConstLabels: labels,
		}),
		BudgetUsedBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "indextuner",
			Subsystem:   "selector",
			Name:        "budget_used_bytes",
			Help:        "Memory bytes committed by the selected index set in the most recent round",
			ConstLabels: labels,
		}),
		BudgetTotalBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "indextuner",
			Subsystem:   "selector",
			Name:        "budget_total_bytes",
			Help:        "The configured memory budget for the most recent round",
			ConstLabels: labels,
		}),
		OperationsTotal: *promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "indextuner",
			Subsystem:   "planner",
			Name:        "operations_total",
			Help:        "Total number of tuning operations applied, by kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		OperationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "indextuner",
			Subsystem:   "planner",
			Name:        "operation_duration_seconds",
			Help:        "Histogram of per-operation apply durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		OperationFailuresTotal: *promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "indextuner",
			Subsystem:   "planner",
			Name:        "operation_failures_total",
			Help:        "Total number of tuning operations that failed to apply, by kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		MVCCGatedScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "indextuner",
			Subsystem:   "inspector",
			Name:        "mvcc_gated_scans_total",
			Help:        "Total number of physical-mode plan cache entries suppressed for carrying an MVCC validate gate",
			ConstLabels: labels,
		}),
	}
}

// ObserveRound records the outcome of one completed round.
func (m *Metrics) ObserveRound(durationSeconds float64, failed bool) {
	m.RoundsTotal.Inc()
	m.RoundDuration.Observe(durationSeconds)
	if failed {
		m.RoundFailuresTotal.Inc()
	}
}

// ObserveSelection records the evaluator/selector output sizes for the round.
func (m *Metrics) ObserveSelection(evaluated, selected int, usedBytes, totalBytes uint64) {
	m.ChoicesEvaluatedTotal.Set(float64(evaluated))
	m.ChoicesSelectedTotal.Set(float64(selected))
	m.BudgetUsedBytes.Set(float64(usedBytes))
	m.BudgetTotalBytes.Set(float64(totalBytes))
}

// ObserveOperation records one applied (or failed) TuningOperation.
func (m *Metrics) ObserveOperation(kind string, durationSeconds float64, failed bool) {
	m.OperationsTotal.WithLabelValues(kind).Inc()
	m.OperationDuration.Observe(durationSeconds)
	if failed {
		m.OperationFailuresTotal.WithLabelValues(kind).Inc()
	}
}

// ObserveMVCCGatedScan records one plan-cache entry the inspector
// suppressed for carrying an MVCC validate gate.
func (m *Metrics) ObserveMVCCGatedScan() {
	m.MVCCGatedScansTotal.Inc()
}
