package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/operation"
)

func TestSetNetworkStateSuppressesUnchanged(t *testing.T) {
	bus := eventbus.New()
	var changedCount int
	bus.Subscribe(eventbus.TopicNetworkChanged, func(payload any) { changedCount++ })

	c := New(DefaultConfig(), bus)
	c.SetNetworkState(operation.NetworkOnline)
	c.SetNetworkState(operation.NetworkOnline)
	assert.Equal(t, 1, changedCount)
}

func TestSetNetworkStateEmitsOnlineOffline(t *testing.T) {
	bus := eventbus.New()
	var online, offline int
	bus.Subscribe(eventbus.TopicNetworkOnline, func(payload any) { online++ })
	bus.Subscribe(eventbus.TopicNetworkOffline, func(payload any) { offline++ })

	c := New(DefaultConfig(), bus)
	c.SetNetworkState(operation.NetworkOffline)
	c.SetNetworkState(operation.NetworkOnline)
	assert.Equal(t, 1, online)
	assert.Equal(t, 0, offline)

	c.SetNetworkState(operation.NetworkPoor)
	assert.Equal(t, 1, offline)
}

func TestUpdateBandwidthDerivesBaselineAndOverrides(t *testing.T) {
	c := New(DefaultConfig(), eventbus.New())
	profile := c.UpdateBandwidth(operation.Effective4G, 0, 0)
	assert.Equal(t, float64(5000), profile.SpeedKbps)
	assert.Equal(t, float64(50), profile.LatencyMs)
	assert.Equal(t, 0.95, profile.Reliability)

	profile = c.UpdateBandwidth(operation.Effective3G, 2, 120)
	assert.Equal(t, float64(2*1024), profile.SpeedKbps)
	assert.Equal(t, float64(120), profile.LatencyMs)
}

func TestUpdateBandwidthSlow2GSetsPoorState(t *testing.T) {
	bus := eventbus.New()
	c := New(DefaultConfig(), bus)
	c.SetNetworkState(operation.NetworkOnline)
	c.UpdateBandwidth(operation.EffectiveSlow2G, 0, 0)
	assert.Equal(t, operation.NetworkPoor, c.NetworkState())
}

func TestAdaptiveBatchingShrinksOnSlowConnection(t *testing.T) {
	c := New(DefaultConfig(), eventbus.New())
	c.UpdateBandwidth(operation.EffectiveSlow2G, 0, 0)
	size, bytes := c.BatchLimits()
	assert.Equal(t, 25, size)
	assert.Equal(t, defaultMaxBatchBytes/4, bytes)
}

func TestAdaptiveBatchingGrowsOnFastConnection(t *testing.T) {
	c := New(DefaultConfig(), eventbus.New())
	c.UpdateBandwidth(operation.Effective4G, 10, 10)
	size, bytes := c.BatchLimits()
	assert.Equal(t, 200, size)
	assert.Equal(t, 10*1024*1024, bytes)
}

func TestEstimateSyncTimeStrictlyIncreasingInBytes(t *testing.T) {
	c := New(DefaultConfig(), eventbus.New())
	c.UpdateBandwidth(operation.Effective4G, 5, 50)
	small := c.EstimateSyncTime(1000)
	large := c.EstimateSyncTime(1_000_000)
	assert.Less(t, small, large)
}

func TestEstimateSyncTimeZeroWithoutProfile(t *testing.T) {
	c := New(DefaultConfig(), eventbus.New())
	assert.Equal(t, int64(0), c.EstimateSyncTime(1000))
}

func testOps(n int, priority operation.Priority) []*operation.Operation {
	ops := make([]*operation.Operation, n)
	for i := range ops {
		ops[i] = &operation.Operation{ID: "op", Priority: priority, BytesSize: 100}
	}
	return ops
}

func TestCreateSyncBatchRespectsMaxSize(t *testing.T) {
	c := New(DefaultConfig(), eventbus.New())
	c.maxBatchSize = 3
	batch := c.CreateSyncBatch(testOps(10, operation.PriorityNormal))
	assert.Len(t, batch.Operations, 3)
	assert.Equal(t, 300, batch.TotalSize)
}

func TestBatchLifecycleCompletes(t *testing.T) {
	bus := eventbus.New()
	var started, progress, completed int
	bus.Subscribe(eventbus.TopicBatchStarted, func(payload any) { started++ })
	bus.Subscribe(eventbus.TopicBatchProgress, func(payload any) { progress++ })
	bus.Subscribe(eventbus.TopicBatchCompleted, func(payload any) { completed++ })

	c := New(DefaultConfig(), bus)
	batch := c.CreateSyncBatch(testOps(2, operation.PriorityHigh))

	require.NoError(t, c.StartSyncBatch(batch.BatchID))
	assert.Equal(t, 1, started)

	require.NoError(t, c.UpdateProgress(batch.BatchID, 1, 100))
	assert.Equal(t, 1, progress)

	require.NoError(t, c.CompleteSyncBatch(batch.BatchID, true, []string{"op"}, nil))
	assert.Equal(t, 1, completed)

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalSucceeded)
	assert.False(t, stats.InProgress)
}

func TestFailSyncBatchRetriesThenFails(t *testing.T) {
	bus := eventbus.New()
	var retries, failed int
	bus.Subscribe(eventbus.TopicBatchRetry, func(payload any) { retries++ })
	bus.Subscribe(eventbus.TopicBatchFailed, func(payload any) { failed++ })

	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	c := New(cfg, bus)
	batch := c.CreateSyncBatch(testOps(1, operation.PriorityNormal))
	require.NoError(t, c.StartSyncBatch(batch.BatchID))

	require.NoError(t, c.FailSyncBatch(batch.BatchID, assertErr("net down"), true))
	assert.Equal(t, 1, retries)
	assert.Equal(t, 0, failed)

	require.NoError(t, c.FailSyncBatch(batch.BatchID, assertErr("net down"), true))
	assert.Equal(t, 2, retries)
	assert.Equal(t, 0, failed)

	require.NoError(t, c.FailSyncBatch(batch.BatchID, assertErr("net down"), true))
	assert.Equal(t, 2, retries)
	assert.Equal(t, 1, failed)
}

func TestFailSyncBatchRetryReleasesCurrentBatchLock(t *testing.T) {
	bus := eventbus.New()
	c := New(DefaultConfig(), bus)
	batch := c.CreateSyncBatch(testOps(1, operation.PriorityNormal))
	require.NoError(t, c.StartSyncBatch(batch.BatchID))

	require.NoError(t, c.FailSyncBatch(batch.BatchID, assertErr("net down"), true))
	assert.False(t, c.Stats().InProgress)

	next := c.CreateSyncBatch(testOps(1, operation.PriorityNormal))
	require.NoError(t, c.StartSyncBatch(next.BatchID))
}

func TestClearReleasesUnstartedBatch(t *testing.T) {
	bus := eventbus.New()
	c := New(DefaultConfig(), bus)
	batch := c.CreateSyncBatch(testOps(1, operation.PriorityNormal))

	c.Clear(batch.BatchID)
	assert.ErrorIs(t, c.StartSyncBatch(batch.BatchID), ErrUnknownBatch)
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertErr(msg string) error { return simpleErr(msg) }
