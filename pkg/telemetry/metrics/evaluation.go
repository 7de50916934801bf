package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"veridian-hq/callisto/pkg/config"
)

// EvaluationMetrics tracks tiered privacy evaluations.
//
// Metrics:
//   - callisto_evaluations_total: Evaluations by decision and resolution
//     path ("local_cache", "trusted", "authoritative_cache", "authoritative")
//   - callisto_evaluation_duration_seconds: End-to-end evaluation duration
//     by resolution path
//   - callisto_evaluation_errors_total: Evaluations that failed by reason
//   - callisto_trusted_failures_total: Trusted-path attempts that fell
//     through to the authoritative tier
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	trustedFailures    prometheus.Counter
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of privacy evaluations",
			},
			[]string{"decision", "path"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "End-to-end duration of privacy evaluations",
				// Cache hits resolve in microseconds; authoritative
				// round-trips with simulated hops can take tens of ms.
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
			},
			[]string{"path"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_errors_total",
				Help:      "Total number of failed privacy evaluations",
			},
			[]string{"reason"},
		),

		trustedFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "trusted_failures_total",
				Help:      "Trusted-path attempts that fell through to the authoritative tier",
			},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.errorsTotal,
		em.trustedFailures,
	)

	return em
}

// RecordEvaluation records a completed evaluation.
func (em *EvaluationMetrics) RecordEvaluation(decision, path string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(decision, path).Inc()
	em.evaluationDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordError records a failed evaluation.
func (em *EvaluationMetrics) RecordError(reason string) {
	em.errorsTotal.WithLabelValues(reason).Inc()
}

// RecordTrustedFailure records a trusted-path fall-through.
func (em *EvaluationMetrics) RecordTrustedFailure() {
	em.trustedFailures.Inc()
}
