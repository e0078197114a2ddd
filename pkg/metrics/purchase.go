package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PurchaseMetrics records the outcome and per-step latency of purchase orchestration.
type PurchaseMetrics struct {
	outcomes      *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	compensations *prometheus.CounterVec
}

// NewPurchaseMetrics registers the purchase metrics on the provided registerer.
func NewPurchaseMetrics(reg prometheus.Registerer) *PurchaseMetrics {
	if reg == nil {
		return &PurchaseMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_outcomes_total",
		Help: "Purchase attempts by terminal outcome.",
	}, []string{"outcome"})
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "purchase_step_duration_seconds",
		Help:    "Duration of each purchase step in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_compensations_total",
		Help: "Compensating wallet refunds by result.",
	}, []string{"result"})
	reg.MustRegister(outcomes, stepDuration, compensations)
	return &PurchaseMetrics{
		outcomes:      outcomes,
		stepDuration:  stepDuration,
		compensations: compensations,
	}
}

// IncOutcome counts a finished purchase attempt.
func (p *PurchaseMetrics) IncOutcome(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveStep records how long a single step took, successful or not.
func (p *PurchaseMetrics) ObserveStep(step string, duration time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

// IncCompensation counts a refund attempt; result is "ok" or "failed".
func (p *PurchaseMetrics) IncCompensation(result string) {
	if p == nil || p.compensations == nil {
		return
	}
	p.compensations.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
