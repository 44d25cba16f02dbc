package prometheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	dto "github.com/prometheus/client_model/go"

	"github.com/aeonsync/core/pkg/metrics"
)

func TestQueueMetricsRecordsEnqueue(t *testing.T) {
	metrics.InitRegistry()

	m := newQueueMetrics()
	m.RecordEnqueue("high")
	m.SetDepth(3, 1024)

	families, err := metrics.GetRegistry().Gather()
	assert.NoError(t, err)
	assert.True(t, hasMetric(families, "aeonsync_queue_enqueued_total"))
	assert.True(t, hasMetric(families, "aeonsync_queue_depth"))
}

func TestConflictMetricsNilReceiverIsSafe(t *testing.T) {
	var m *conflictMetrics
	assert.NotPanics(t, func() {
		m.RecordDetected("update_update")
		m.RecordResolved("merge", true)
		m.RecordRetained()
		m.ObserveResolutionDuration(5)
		m.SetUnresolvedDepth(1)
	})
}

func TestSyncMetricsNetworkStateIsExclusive(t *testing.T) {
	metrics.InitRegistry()

	m := newSyncMetrics().(*syncMetrics)
	m.SetNetworkState("online")

	families, err := metrics.GetRegistry().Gather()
	assert.NoError(t, err)
	online := metricValue(families, "aeonsync_network_state", "online")
	offline := metricValue(families, "aeonsync_network_state", "offline")
	assert.Equal(t, float64(1), online)
	assert.Equal(t, float64(0), offline)
}

func hasMetric(families []*dto.MetricFamily, name string) bool {
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

func metricValue(families []*dto.MetricFamily, name, label string) float64 {
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, mf := range f.GetMetric() {
			for _, lp := range mf.GetLabel() {
				if lp.GetValue() == label {
					return mf.GetGauge().GetValue()
				}
			}
		}
	}
	return -1
}
