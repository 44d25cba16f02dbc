package metrics

import syncpkg "github.com/aeonsync/core/pkg/sync"

// NewSyncMetrics creates a new Prometheus-backed sync.Metrics instance,
// or nil when metrics are not enabled.
func NewSyncMetrics() syncpkg.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusSyncMetrics()
}

var newPrometheusSyncMetrics func() syncpkg.Metrics

// RegisterSyncMetricsConstructor wires the Prometheus implementation.
func RegisterSyncMetricsConstructor(constructor func() syncpkg.Metrics) {
	newPrometheusSyncMetrics = constructor
}
