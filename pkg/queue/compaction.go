package queue

import (
	"context"
	"time"

	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/operation"
)

// compactionDue reports whether the queue's current size has crossed
// CompactionThreshold of MaxLocalCapacity. Caller must hold q.mu.
func (q *Queue) compactionDue() bool {
	if q.cfg.MaxLocalCapacity <= 0 {
		return false
	}
	ratio := float64(q.totalBytes) / float64(q.cfg.MaxLocalCapacity)
	return ratio >= q.cfg.CompactionThreshold
}

// compact discards synced operations older than SyncedCleanupAge,
// freeing capacity for new enqueues. It returns the number of bytes
// freed and publishes queue:compacted when anything was removed.
func (q *Queue) compact(ctx context.Context) int {
	cutoff := time.Now().Add(-q.cfg.SyncedCleanupAge).UnixMilli()

	q.mu.Lock()
	var removedIDs []string
	freedBytes := 0
	for id, op := range q.operations {
		if op.Status == operation.StatusSynced && op.SyncedAt > 0 && op.SyncedAt < cutoff {
			removedIDs = append(removedIDs, id)
			freedBytes += op.BytesSize
		}
	}
	for _, id := range removedIDs {
		delete(q.operations, id)
	}
	q.totalBytes -= freedBytes
	if len(removedIDs) > 0 {
		q.lastCompactionAt = time.Now().UnixMilli()
	}
	q.mu.Unlock()

	if len(removedIDs) == 0 {
		return 0
	}

	if q.store != nil {
		for _, id := range removedIDs {
			if err := q.store.Delete(ctx, id); err != nil {
				q.bus.Publish(eventbus.TopicQueueError, eventbus.QueueErrorEvent{OperationID: id, Err: err})
			}
		}
	}
	q.bus.Publish(eventbus.TopicQueueCompacted, eventbus.QueueCompactedEvent{RemovedCount: len(removedIDs), FreedBytes: freedBytes})
	if q.metrics != nil {
		q.metrics.RecordCompaction(freedBytes)
		q.reportDepth()
	}
	return freedBytes
}

// reportDepth pushes the current operation count and byte total to the
// metrics sink, if one is attached.
func (q *Queue) reportDepth() {
	q.mu.Lock()
	count, bytes := len(q.operations), q.totalBytes
	q.mu.Unlock()
	q.metrics.SetDepth(count, bytes)
}
