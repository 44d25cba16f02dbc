// Package metrics exposes nil-safe constructors for the domain metrics
// interfaces declared by pkg/queue, pkg/conflict, and pkg/sync. Callers
// wire components unconditionally (e.g. queue.SetMetrics(metrics.NewQueueMetrics()));
// when metrics are disabled the constructors return a nil interface
// value, and each component skips recording when its metrics are nil,
// at zero overhead.
//
// The concrete Prometheus collectors live in pkg/metrics/prometheus to
// avoid an import cycle (that package imports this one for the
// registration hooks below); importing it for side effects is what
// wires the constructors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and creates the Prometheus
// registry that all collectors register against. Call once at startup
// before constructing any component metrics.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
