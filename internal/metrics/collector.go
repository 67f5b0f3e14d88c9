// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector owns the coordination core's prometheus instruments.
type Collector struct {
	// round metrics
	roundsTotal     *prometheus.CounterVec
	roundDuration   prometheus.Histogram
	roundConfidence prometheus.Histogram

	// decision metrics
	decisionsTotal        *prometheus.CounterVec
	decisionsDroppedTotal *prometheus.CounterVec

	// debate metrics
	debatesTotal   *prometheus.CounterVec
	debateOutcomes *prometheus.CounterVec

	// budget metrics
	budgetSpendTotal      *prometheus.CounterVec
	budgetRejectionsTotal *prometheus.CounterVec
	emergencyReserve      prometheus.Gauge

	logger *zap.Logger
}

// NewCollector creates a collector registered against the default registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Total number of coordination rounds",
		},
		[]string{"mode"},
	)

	c.roundDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Coordination round duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	c.roundConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_confidence",
			Help:      "Overall confidence of each round's consensus",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	c.decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total decisions collected from specialists",
		},
		[]string{"role"},
	)

	c.decisionsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_dropped_total",
			Help:      "Decisions dropped before consensus",
		},
		[]string{"role", "reason"},
	)

	c.debatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debates_total",
			Help:      "Total debates run",
		},
		[]string{"topic"},
	)

	c.debateOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debate_outcomes_total",
			Help:      "Debate outcomes by kind",
		},
		[]string{"outcome"},
	)

	c.budgetSpendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_spend_total",
			Help:      "Cash debited from role budgets",
		},
		[]string{"role", "source"},
	)

	c.budgetRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_rejections_total",
			Help:      "Decisions rejected for exceeding budget",
		},
		[]string{"role"},
	)

	c.emergencyReserve = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "emergency_reserve_dollars",
			Help:      "Current emergency reserve",
		},
	)

	return c
}

// RecordRound records a finished coordination round.
func (c *Collector) RecordRound(mode string, duration time.Duration, confidence float64) {
	c.roundsTotal.WithLabelValues(mode).Inc()
	c.roundDuration.Observe(duration.Seconds())
	c.roundConfidence.Observe(confidence)
}

// RecordDecision records one collected decision.
func (c *Collector) RecordDecision(role string) {
	c.decisionsTotal.WithLabelValues(role).Inc()
}

// RecordDroppedDecision records a decision dropped before consensus.
func (c *Collector) RecordDroppedDecision(role, reason string) {
	c.decisionsDroppedTotal.WithLabelValues(role, reason).Inc()
}

// RecordDebate records a debate and its outcome.
func (c *Collector) RecordDebate(topic string, consensus bool) {
	c.debatesTotal.WithLabelValues(topic).Inc()
	outcome := "compromise"
	if consensus {
		outcome = "consensus"
	}
	c.debateOutcomes.WithLabelValues(outcome).Inc()
}

// RecordBudgetSpend records a ledger debit.
func (c *Collector) RecordBudgetSpend(role, source string, amount float64) {
	c.budgetSpendTotal.WithLabelValues(role, source).Add(amount)
}

// RecordBudgetRejection records a budget-rejected decision.
func (c *Collector) RecordBudgetRejection(role string) {
	c.budgetRejectionsTotal.WithLabelValues(role).Inc()
}

// SetEmergencyReserve updates the reserve gauge.
func (c *Collector) SetEmergencyReserve(amount float64) {
	c.emergencyReserve.Set(amount)
}
