package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aeonsync/core/pkg/metrics"
	"github.com/aeonsync/core/pkg/queue"
)

func init() {
	metrics.RegisterQueueMetricsConstructor(newQueueMetrics)
}

type queueMetrics struct {
	enqueued    *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	depth       prometheus.Gauge
	depthBytes  prometheus.Gauge
	compactions prometheus.Counter
	freedBytes  prometheus.Counter
}

func newQueueMetrics() queue.Metrics {
	reg := metrics.GetRegistry()
	return &queueMetrics{
		enqueued: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeonsync_queue_enqueued_total",
				Help: "Total number of operations enqueued, by priority",
			},
			[]string{"priority"},
		),
		outcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeonsync_queue_outcomes_total",
				Help: "Total number of operations leaving pending state, by outcome",
			},
			[]string{"outcome"},
		),
		depth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "aeonsync_queue_depth",
				Help: "Current number of operations held in the queue",
			},
		),
		depthBytes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "aeonsync_queue_bytes",
				Help: "Current total encrypted byte size held in the queue",
			},
		),
		compactions: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "aeonsync_queue_compactions_total",
				Help: "Total number of compaction passes that removed at least one operation",
			},
		),
		freedBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "aeonsync_queue_compaction_freed_bytes_total",
				Help: "Total bytes freed by compaction",
			},
		),
	}
}

func (m *queueMetrics) RecordEnqueue(priority string) {
	if m == nil {
		return
	}
	m.enqueued.WithLabelValues(priority).Inc()
}

func (m *queueMetrics) RecordOutcome(status string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(status).Inc()
}

func (m *queueMetrics) SetDepth(operations, bytes int) {
	if m == nil {
		return
	}
	m.depth.Set(float64(operations))
	m.depthBytes.Set(float64(bytes))
}

func (m *queueMetrics) RecordCompaction(freedBytes int) {
	if m == nil {
		return
	}
	if freedBytes <= 0 {
		return
	}
	m.compactions.Inc()
	m.freedBytes.Add(float64(freedBytes))
}
