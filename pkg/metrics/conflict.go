package metrics

import "github.com/aeonsync/core/pkg/conflict"

// NewConflictMetrics creates a new Prometheus-backed conflict.Metrics
// instance, or nil when metrics are not enabled.
func NewConflictMetrics() conflict.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusConflictMetrics()
}

var newPrometheusConflictMetrics func() conflict.Metrics

// RegisterConflictMetricsConstructor wires the Prometheus implementation.
func RegisterConflictMetricsConstructor(constructor func() conflict.Metrics) {
	newPrometheusConflictMetrics = constructor
}
