package metrics

import "github.com/aeonsync/core/pkg/queue"

// NewQueueMetrics creates a new Prometheus-backed queue.Metrics
// instance, or nil when metrics are not enabled.
func NewQueueMetrics() queue.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusQueueMetrics()
}

// newPrometheusQueueMetrics is registered by pkg/metrics/prometheus
// during package initialization, breaking the import cycle that a
// direct dependency on that package would create.
var newPrometheusQueueMetrics func() queue.Metrics

// RegisterQueueMetricsConstructor wires the Prometheus implementation.
func RegisterQueueMetricsConstructor(constructor func() queue.Metrics) {
	newPrometheusQueueMetrics = constructor
}
