package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aeonsync/core/pkg/conflict"
	"github.com/aeonsync/core/pkg/metrics"
)

func init() {
	metrics.RegisterConflictMetricsConstructor(newConflictMetrics)
}

type conflictMetrics struct {
	detected          *prometheus.CounterVec
	resolved          *prometheus.CounterVec
	retained          prometheus.Counter
	resolutionSeconds prometheus.Histogram
	unresolvedDepth   prometheus.Gauge
}

func newConflictMetrics() conflict.Metrics {
	reg := metrics.GetRegistry()
	return &conflictMetrics{
		detected: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeonsync_conflicts_detected_total",
				Help: "Total number of conflicts detected, by type",
			},
			[]string{"type"},
		),
		resolved: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeonsync_conflicts_resolved_total",
				Help: "Total number of conflicts resolved, by strategy and whether resolution was automatic",
			},
			[]string{"strategy", "auto"},
		),
		retained: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "aeonsync_conflicts_retained_total",
				Help: "Total number of conflicts added to the unresolved cache",
			},
		),
		resolutionSeconds: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aeonsync_conflict_resolution_milliseconds",
				Help:    "Duration of automatic conflict resolution in milliseconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
			},
		),
		unresolvedDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "aeonsync_conflicts_unresolved",
				Help: "Current size of the unresolved conflict cache",
			},
		),
	}
}

func (m *conflictMetrics) RecordDetected(conflictType string) {
	if m == nil {
		return
	}
	m.detected.WithLabelValues(conflictType).Inc()
}

func (m *conflictMetrics) RecordResolved(strategy string, auto bool) {
	if m == nil {
		return
	}
	autoLabel := "false"
	if auto {
		autoLabel = "true"
	}
	m.resolved.WithLabelValues(strategy, autoLabel).Inc()
}

func (m *conflictMetrics) RecordRetained() {
	if m == nil {
		return
	}
	m.retained.Inc()
}

func (m *conflictMetrics) ObserveResolutionDuration(ms float64) {
	if m == nil {
		return
	}
	m.resolutionSeconds.Observe(ms)
}

func (m *conflictMetrics) SetUnresolvedDepth(count int) {
	if m == nil {
		return
	}
	m.unresolvedDepth.Set(float64(count))
}
