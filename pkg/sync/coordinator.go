// Package sync implements the sync coordinator (C5): network state
// tracking, bandwidth profiling, adaptive batch formation, and the
// batch lifecycle / retry state machine driving operations to the
// remote transport.
package sync

import (
	"fmt"
	"sync"
	"time"

	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/operation"
)

const (
	networkHistoryCap   = 100
	bandwidthHistoryCap = 50
)

// NetworkTransition records one network state change for the bounded
// history ring buffer.
type NetworkTransition struct {
	PreviousState operation.NetworkState
	NewState      operation.NetworkState
	Timestamp     int64
}

// Coordinator is the sync coordinator described by component C5. It is
// safe for concurrent use.
type Coordinator struct {
	cfg Config
	bus *eventbus.Bus

	mu                sync.Mutex
	networkState      operation.NetworkState
	networkHistory    []NetworkTransition
	bandwidth         *operation.BandwidthProfile
	bandwidthHistory  []operation.BandwidthProfile
	maxBatchSize      int
	maxBatchBytes     int
	batches           map[string]*batchState
	currentBatchID    string
	totalAttempted    int
	totalSucceeded    int
	totalFailed       int
	metrics           Metrics
}

type batchState struct {
	batch        *operation.Batch
	startedAt    int64
	syncedCount  int
	syncedBytes  int
}

// New constructs a Coordinator in the unknown network state with
// default batch limits.
func New(cfg Config, bus *eventbus.Bus) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		cfg:           cfg,
		bus:           bus,
		networkState:  operation.NetworkUnknown,
		maxBatchSize:  cfg.DefaultMaxBatchSize,
		maxBatchBytes: cfg.DefaultMaxBatchBytes,
		batches:       make(map[string]*batchState),
	}
}

// NetworkState returns the coordinator's current connectivity state.
func (c *Coordinator) NetworkState() operation.NetworkState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.networkState
}

// NetworkHistory returns a snapshot of the last transitions (bounded to
// networkHistoryCap).
func (c *Coordinator) NetworkHistory() []NetworkTransition {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]NetworkTransition, len(c.networkHistory))
	copy(out, c.networkHistory)
	return out
}

// SetNetworkState transitions the coordinator to a new network state.
// Emission is suppressed when the state does not actually change.
func (c *Coordinator) SetNetworkState(next operation.NetworkState) {
	c.mu.Lock()
	prev := c.networkState
	if prev == next {
		c.mu.Unlock()
		return
	}
	c.networkState = next
	now := time.Now().UnixMilli()
	c.networkHistory = append(c.networkHistory, NetworkTransition{PreviousState: prev, NewState: next, Timestamp: now})
	if len(c.networkHistory) > networkHistoryCap {
		c.networkHistory = c.networkHistory[len(c.networkHistory)-networkHistoryCap:]
	}
	bandwidth := c.bandwidth
	metrics := c.metrics
	c.mu.Unlock()

	if metrics != nil {
		metrics.SetNetworkState(string(next))
	}
	if prev == operation.NetworkOffline && next == operation.NetworkOnline {
		c.bus.Publish(eventbus.TopicNetworkOnline, nil)
	} else if prev == operation.NetworkOnline && next != operation.NetworkOnline {
		c.bus.Publish(eventbus.TopicNetworkOffline, nil)
	}
	c.bus.Publish(eventbus.TopicNetworkChanged, eventbus.NetworkChangedEvent{
		PreviousState: prev,
		NewState:      next,
		Bandwidth:     bandwidth,
		Timestamp:     now,
	})
}

// UpdateBandwidth derives a bandwidth profile from platform connection
// signals, records it in history, adapts batch limits when
// AdaptiveBatching is enabled, and nudges the network state to `poor`
// for slow-2g/2g effective types.
func (c *Coordinator) UpdateBandwidth(effectiveType operation.EffectiveType, downlinkMbps, rttMs float64) operation.BandwidthProfile {
	now := time.Now().UnixMilli()
	profile := deriveBandwidth(effectiveType, downlinkMbps, rttMs, now)

	c.mu.Lock()
	c.bandwidth = &profile
	c.bandwidthHistory = append(c.bandwidthHistory, profile)
	if len(c.bandwidthHistory) > bandwidthHistoryCap {
		c.bandwidthHistory = c.bandwidthHistory[len(c.bandwidthHistory)-bandwidthHistoryCap:]
	}
	if c.cfg.AdaptiveBatching {
		c.maxBatchSize, c.maxBatchBytes = adaptedBatchLimits(profile.SpeedKbps, c.cfg.DefaultMaxBatchSize, c.cfg.DefaultMaxBatchBytes)
	}
	maxSize, maxBytes := c.maxBatchSize, c.maxBatchBytes
	metrics := c.metrics
	c.mu.Unlock()

	if metrics != nil {
		metrics.RecordBandwidth(profile.SpeedKbps, profile.LatencyMs)
		metrics.SetBatchLimits(maxSize, maxBytes)
	}

	if effectiveType == operation.EffectiveSlow2G || effectiveType == operation.Effective2G {
		if c.NetworkState() != operation.NetworkOffline {
			c.SetNetworkState(operation.NetworkPoor)
		}
	}
	return profile
}

// Bandwidth returns the most recently derived bandwidth profile, or nil
// if none has been recorded yet.
func (c *Coordinator) Bandwidth() *operation.BandwidthProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bandwidth
}

// BatchLimits returns the coordinator's current (possibly adapted)
// batch size and byte caps.
func (c *Coordinator) BatchLimits() (maxSize, maxBytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxBatchSize, c.maxBatchBytes
}

// EstimateSyncTime estimates, in milliseconds, how long it would take
// to transfer the given number of bytes at the current bandwidth
// profile. Returns 0 if no profile has been derived yet.
func (c *Coordinator) EstimateSyncTime(bytes int) int64 {
	c.mu.Lock()
	bw := c.bandwidth
	c.mu.Unlock()
	if bw == nil || bw.SpeedKbps <= 0 {
		return 0
	}
	seconds := float64(bytes)*8/(bw.SpeedKbps*1024) + bw.LatencyMs/1000
	ms := seconds * 1000
	return int64(ceilFloat(ms))
}

func ceilFloat(v float64) float64 {
	i := float64(int64(v))
	if v > i {
		return i + 1
	}
	return i
}

// ErrUnknownBatch is returned by batch-lifecycle methods given an id
// that was not produced by CreateSyncBatch.
var ErrUnknownBatch = fmt.Errorf("sync: unknown batch")

// ErrBatchInProgress is returned by StartSyncBatch when another batch
// is already current.
var ErrBatchInProgress = fmt.Errorf("sync: a batch is already in progress")
