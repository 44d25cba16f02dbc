package sync

import (
	"time"

	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/operation"
)

// CreateSyncBatch assembles a batch from candidate operations honoring
// the coordinator's current maxBatchSize/maxBatchBytes caps, caches it,
// and emits batch:created. Candidates are expected to already be
// priority/FIFO ordered (as returned by the queue's
// NextBatchCandidates).
func (c *Coordinator) CreateSyncBatch(candidates []*operation.Operation) *operation.Batch {
	c.mu.Lock()
	maxSize, maxBytes := c.maxBatchSize, c.maxBatchBytes
	c.mu.Unlock()

	var members []*operation.Operation
	bytes := 0
	for _, op := range candidates {
		if len(members) >= maxSize {
			break
		}
		if bytes+op.BytesSize > maxBytes && len(members) > 0 {
			break
		}
		members = append(members, op)
		bytes += op.BytesSize
	}

	batch := &operation.Batch{
		BatchID:    operation.GenerateBatchID(),
		Operations: members,
		TotalSize:  bytes,
		Priority:   operation.HighestPriority(members),
	}

	c.mu.Lock()
	c.batches[batch.BatchID] = &batchState{batch: batch}
	c.mu.Unlock()

	c.bus.Publish(eventbus.TopicBatchCreated, eventbus.BatchEvent{BatchID: batch.BatchID, Batch: batch})
	return batch
}

// StartSyncBatch marks a cached batch as the current in-flight batch,
// initializes its progress tracking, and emits batch:started.
func (c *Coordinator) StartSyncBatch(id string) error {
	c.mu.Lock()
	if c.currentBatchID != "" {
		c.mu.Unlock()
		return ErrBatchInProgress
	}
	st, ok := c.batches[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownBatch
	}
	st.startedAt = time.Now().UnixMilli()
	c.currentBatchID = id
	c.totalAttempted++
	c.mu.Unlock()

	c.bus.Publish(eventbus.TopicBatchStarted, eventbus.BatchEvent{BatchID: id, Batch: st.batch})
	return nil
}

// Clear releases a cached batch without running it through the
// completed/failed lifecycle, per spec §5: the driver may abort a
// pending batch before StartSyncBatch by calling Clear. Clearing the
// coordinator's currently in-flight batch is also how a driver
// recovers the StartSyncBatch lock after abandoning a failed batch
// (building a fresh one with a new id) rather than resubmitting the
// original. It is a no-op if id is unknown.
func (c *Coordinator) Clear(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentBatchID == id {
		c.currentBatchID = ""
	}
	delete(c.batches, id)
}

// UpdateProgress records sync progress for the current batch and emits
// batch:progress with an estimated time remaining derived from the
// current bandwidth profile.
func (c *Coordinator) UpdateProgress(id string, syncedCount, syncedBytes int) error {
	c.mu.Lock()
	st, ok := c.batches[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownBatch
	}
	st.syncedCount = syncedCount
	st.syncedBytes = syncedBytes
	remaining := st.batch.TotalSize - syncedBytes
	if remaining < 0 {
		remaining = 0
	}
	c.mu.Unlock()

	eta := float64(c.EstimateSyncTime(remaining))
	c.bus.Publish(eventbus.TopicBatchProgress, eventbus.BatchProgressEvent{
		BatchID:                  id,
		SyncedCount:              syncedCount,
		SyncedBytes:              syncedBytes,
		EstimatedTimeRemainingMs: eta,
	})
	return nil
}

// CompleteSyncBatch finalizes a batch, updates success/failure
// counters, emits batch:completed, and clears the current batch.
func (c *Coordinator) CompleteSyncBatch(id string, success bool, synced, failed []string) error {
	c.mu.Lock()
	st, ok := c.batches[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownBatch
	}
	if success {
		c.totalSucceeded++
	} else {
		c.totalFailed++
	}
	if c.currentBatchID == id {
		c.currentBatchID = ""
	}
	delete(c.batches, id)
	metrics := c.metrics
	startedAt := st.startedAt
	c.mu.Unlock()

	if metrics != nil {
		outcome := "completed"
		if !success {
			outcome = "failed"
		}
		metrics.RecordBatchOutcome(outcome)
		if startedAt > 0 {
			metrics.ObserveBatchDuration(float64(time.Now().UnixMilli() - startedAt))
		}
	}
	c.bus.Publish(eventbus.TopicBatchCompleted, eventbus.BatchCompletedEvent{BatchID: id, Success: success, Synced: synced, Failed: failed})
	return nil
}

// FailSyncBatch implements the retry/failure split: when retryable and
// under MaxRetries, the batch's attempt count increments
// and batch:retry fires, leaving scheduling to the caller; otherwise
// batch:failed fires and the batch is cleared.
func (c *Coordinator) FailSyncBatch(id string, cause error, retryable bool) error {
	c.mu.Lock()
	st, ok := c.batches[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownBatch
	}

	if retryable && st.batch.AttemptCount < c.cfg.MaxRetries {
		st.batch.AttemptCount++
		attempt := st.batch.AttemptCount
		if c.currentBatchID == id {
			c.currentBatchID = ""
		}
		metrics := c.metrics
		c.mu.Unlock()
		if metrics != nil {
			metrics.RecordBatchOutcome("retry")
		}
		c.bus.Publish(eventbus.TopicBatchRetry, eventbus.BatchRetryEvent{BatchID: id, Attempt: attempt, Err: cause})
		return nil
	}

	c.totalFailed++
	if c.currentBatchID == id {
		c.currentBatchID = ""
	}
	delete(c.batches, id)
	metrics := c.metrics
	startedAt := st.startedAt
	c.mu.Unlock()

	if metrics != nil {
		metrics.RecordBatchOutcome("failed")
		if startedAt > 0 {
			metrics.ObserveBatchDuration(float64(time.Now().UnixMilli() - startedAt))
		}
	}
	c.bus.Publish(eventbus.TopicBatchFailed, eventbus.BatchFailedEvent{BatchID: id, Err: cause})
	return nil
}

// RetryDelayMs returns the exponential-with-jitter-free base delay for
// the given attempt number (1-indexed); the driver is expected to add
// jitter.
func (c *Coordinator) RetryDelayMs(attempt int) int64 {
	if attempt < 1 {
		attempt = 1
	}
	delay := c.cfg.BaseRetryDelayMs
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// Stats reports the coordinator's lifetime sync counters.
type Stats struct {
	TotalAttempted int
	TotalSucceeded int
	TotalFailed    int
	InProgress     bool
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		TotalAttempted: c.totalAttempted,
		TotalSucceeded: c.totalSucceeded,
		TotalFailed:    c.totalFailed,
		InProgress:     c.currentBatchID != "",
	}
}
