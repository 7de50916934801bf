package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"veridian-hq/callisto/pkg/config"
)

// DecisionCacheMetrics tracks decision cache performance per tier.
//
// Metrics:
//   - callisto_cache_hits_total: Cache hits by tier
//   - callisto_cache_misses_total: Cache misses by tier
//   - callisto_cache_entries: Current number of entries by tier
//   - callisto_cache_evictions_total: Entries evicted (TTL, LRU or
//     targeted invalidation) by tier
type DecisionCacheMetrics struct {
	hitsTotal      *prometheus.CounterVec
	missesTotal    *prometheus.CounterVec
	entries        *prometheus.GaugeVec
	evictionsTotal *prometheus.CounterVec
}

// NewDecisionCacheMetrics creates and registers cache metrics with the
// provided registry.
func NewDecisionCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionCacheMetrics {
	cm := &DecisionCacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of decision cache hits",
			},
			[]string{"tier"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of decision cache misses",
			},
			[]string{"tier"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_entries",
				Help:      "Current number of decision cache entries",
			},
			[]string{"tier"},
		),

		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_evictions_total",
				Help:      "Total number of decision cache evictions",
			},
			[]string{"tier"},
		),
	}

	registry.MustRegister(
		cm.hitsTotal,
		cm.missesTotal,
		cm.entries,
		cm.evictionsTotal,
	)

	return cm
}

// RecordHit records a cache hit for a tier.
func (cm *DecisionCacheMetrics) RecordHit(tier string) {
	cm.hitsTotal.WithLabelValues(tier).Inc()
}

// RecordMiss records a cache miss for a tier.
func (cm *DecisionCacheMetrics) RecordMiss(tier string) {
	cm.missesTotal.WithLabelValues(tier).Inc()
}

// RecordEviction records count entries evicted from a tier's cache.
func (cm *DecisionCacheMetrics) RecordEviction(tier string, count int) {
	cm.evictionsTotal.WithLabelValues(tier).Add(float64(count))
}

// SetEntries updates the current entry count gauge for a tier.
func (cm *DecisionCacheMetrics) SetEntries(tier string, count int) {
	cm.entries.WithLabelValues(tier).Set(float64(count))
}
