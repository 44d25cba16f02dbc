package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aeonsync/core/pkg/metrics"
	syncpkg "github.com/aeonsync/core/pkg/sync"
)

func init() {
	metrics.RegisterSyncMetricsConstructor(newSyncMetrics)
}

type syncMetrics struct {
	networkState     *prometheus.GaugeVec
	bandwidthSpeed   prometheus.Gauge
	bandwidthLatency prometheus.Gauge
	batchMaxSize     prometheus.Gauge
	batchMaxBytes    prometheus.Gauge
	batchOutcomes    *prometheus.CounterVec
	batchDuration    prometheus.Histogram
}

var networkStates = []string{"unknown", "online", "offline", "poor"}

func newSyncMetrics() syncpkg.Metrics {
	reg := metrics.GetRegistry()
	m := &syncMetrics{
		networkState: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aeonsync_network_state",
				Help: "1 for the coordinator's current network state, 0 for all others",
			},
			[]string{"state"},
		),
		bandwidthSpeed: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "aeonsync_bandwidth_speed_kbps",
				Help: "Most recently derived bandwidth speed estimate in kbps",
			},
		),
		bandwidthLatency: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "aeonsync_bandwidth_latency_milliseconds",
				Help: "Most recently derived bandwidth latency estimate in milliseconds",
			},
		),
		batchMaxSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "aeonsync_batch_max_size",
				Help: "Current adaptive batch operation count cap",
			},
		),
		batchMaxBytes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "aeonsync_batch_max_bytes",
				Help: "Current adaptive batch byte size cap",
			},
		),
		batchOutcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeonsync_batch_outcomes_total",
				Help: "Total number of sync batches reaching each outcome",
			},
			[]string{"outcome"},
		),
		batchDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aeonsync_batch_duration_milliseconds",
				Help:    "Duration of a sync batch from start to terminal state, in milliseconds",
				Buckets: prometheus.ExponentialBuckets(50, 2, 12),
			},
		),
	}
	for _, s := range networkStates {
		m.networkState.WithLabelValues(s).Set(0)
	}
	return m
}

func (m *syncMetrics) SetNetworkState(state string) {
	if m == nil {
		return
	}
	for _, s := range networkStates {
		if s == state {
			m.networkState.WithLabelValues(s).Set(1)
		} else {
			m.networkState.WithLabelValues(s).Set(0)
		}
	}
}

func (m *syncMetrics) RecordBandwidth(speedKbps, latencyMs float64) {
	if m == nil {
		return
	}
	m.bandwidthSpeed.Set(speedKbps)
	m.bandwidthLatency.Set(latencyMs)
}

func (m *syncMetrics) SetBatchLimits(maxSize, maxBytes int) {
	if m == nil {
		return
	}
	m.batchMaxSize.Set(float64(maxSize))
	m.batchMaxBytes.Set(float64(maxBytes))
}

func (m *syncMetrics) RecordBatchOutcome(outcome string) {
	if m == nil {
		return
	}
	m.batchOutcomes.WithLabelValues(outcome).Inc()
}

func (m *syncMetrics) ObserveBatchDuration(ms float64) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(ms)
}
