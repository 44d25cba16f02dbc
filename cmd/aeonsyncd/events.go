package main

import (
	"context"

	"github.com/aeonsync/core/internal/logger"
	"github.com/aeonsync/core/pkg/conflictstore"
	"github.com/aeonsync/core/pkg/eventbus"
)

// subscribeEventLogging routes a subset of the event bus topics through
// the structured logger at the edge: operation queued and failed-max,
// queue error and compaction, snapshot persisted, network changed, batch
// created/completed/retry/failed, and conflict detected/resolved. The
// other topics (for example TopicNetworkOnline, TopicBatchStarted,
// TopicBatchProgress and TopicConflictRetained) are not logged. No core
// component prints or logs directly; reporting is purely through the
// event bus, and it is the caller/driver that turns events into log lines.
func subscribeEventLogging(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.TopicOperationQueued, func(payload any) {
		if ev, ok := payload.(eventbus.OperationEvent); ok {
			logger.Info("operation queued", logger.OperationID(ev.OperationID), logger.Status(string(ev.Status)))
		}
	})
	bus.Subscribe(eventbus.TopicOperationFailedMax, func(payload any) {
		if ev, ok := payload.(eventbus.FailedMaxRetriesEvent); ok {
			logger.Warn("operation exhausted retries", logger.OperationID(ev.OperationID), "error", ev.Error)
		}
	})
	bus.Subscribe(eventbus.TopicQueueError, func(payload any) {
		if ev, ok := payload.(eventbus.QueueErrorEvent); ok {
			logger.Error("queue error", logger.OperationID(ev.OperationID), logger.Err(ev.Err))
		}
	})
	bus.Subscribe(eventbus.TopicQueueCompacted, func(payload any) {
		if ev, ok := payload.(eventbus.QueueCompactedEvent); ok {
			logger.Info("queue compacted", "removed_count", ev.RemovedCount, "freed_bytes", ev.FreedBytes)
		}
	})
	bus.Subscribe(eventbus.TopicD1Synced, func(payload any) {
		if ev, ok := payload.(eventbus.D1SyncedEvent); ok {
			logger.Debug("queue snapshot persisted", "record_count", ev.RecordCount, logger.QueueBytes(int64(ev.Bytes)))
		}
	})
	bus.Subscribe(eventbus.TopicNetworkChanged, func(payload any) {
		if ev, ok := payload.(eventbus.NetworkChangedEvent); ok {
			logger.Info("network state changed", "previous", string(ev.PreviousState), logger.NetworkState(string(ev.NewState)))
		}
	})
	bus.Subscribe(eventbus.TopicBatchCreated, func(payload any) {
		if ev, ok := payload.(eventbus.BatchEvent); ok && ev.Batch != nil {
			logger.Debug("batch created", logger.BatchID(ev.BatchID), "operations", len(ev.Batch.Operations), logger.QueueBytes(int64(ev.Batch.TotalSize)))
		}
	})
	bus.Subscribe(eventbus.TopicBatchCompleted, func(payload any) {
		if ev, ok := payload.(eventbus.BatchCompletedEvent); ok {
			logger.Info("batch completed", logger.BatchID(ev.BatchID), "success", ev.Success, "synced", len(ev.Synced), "failed", len(ev.Failed))
		}
	})
	bus.Subscribe(eventbus.TopicBatchRetry, func(payload any) {
		if ev, ok := payload.(eventbus.BatchRetryEvent); ok {
			logger.Warn("batch retrying", logger.BatchID(ev.BatchID), logger.Attempt(ev.Attempt), logger.Err(ev.Err))
		}
	})
	bus.Subscribe(eventbus.TopicBatchFailed, func(payload any) {
		if ev, ok := payload.(eventbus.BatchFailedEvent); ok {
			logger.Error("batch failed", logger.BatchID(ev.BatchID), logger.Err(ev.Err))
		}
	})
	bus.Subscribe(eventbus.TopicConflictDetected, func(payload any) {
		if ev, ok := payload.(eventbus.ConflictEvent); ok && ev.Conflict != nil {
			logger.Warn("conflict detected", logger.ConflictID(ev.Conflict.ID), logger.ConflictType(string(ev.Conflict.Type)), logger.Severity(string(ev.Conflict.Severity)))
		}
	})
	bus.Subscribe(eventbus.TopicConflictResolved, func(payload any) {
		if ev, ok := payload.(eventbus.ConflictEvent); ok && ev.Conflict != nil && ev.Conflict.Resolution != nil {
			logger.Info("conflict resolved", logger.ConflictID(ev.Conflict.ID), logger.Strategy(string(ev.Conflict.Resolution.Strategy)))
		}
	})
}

// mirrorUnresolvedConflicts write-through mirrors every detected or
// retained conflict into the durable conflictstore, and deletes the
// stored copy once a conflict resolves, so a restart doesn't lose
// conflicts awaiting manual resolution.
func mirrorUnresolvedConflicts(bus *eventbus.Bus, store *conflictstore.Store) {
	if store == nil {
		return
	}
	ctx := context.Background()
	bus.Subscribe(eventbus.TopicConflictDetected, func(payload any) {
		if ev, ok := payload.(eventbus.ConflictEvent); ok && ev.Conflict != nil {
			if err := store.Save(ctx, ev.Conflict); err != nil {
				logger.Warn("failed to persist conflict", logger.ConflictID(ev.Conflict.ID), logger.Err(err))
			}
		}
	})
	bus.Subscribe(eventbus.TopicConflictRetained, func(payload any) {
		if ev, ok := payload.(eventbus.ConflictEvent); ok && ev.Conflict != nil {
			if err := store.Save(ctx, ev.Conflict); err != nil {
				logger.Warn("failed to persist conflict", logger.ConflictID(ev.Conflict.ID), logger.Err(err))
			}
		}
	})
	bus.Subscribe(eventbus.TopicConflictResolved, func(payload any) {
		if ev, ok := payload.(eventbus.ConflictEvent); ok && ev.Conflict != nil {
			if err := store.Delete(ctx, ev.Conflict.ID); err != nil {
				logger.Warn("failed to clear resolved conflict", logger.ConflictID(ev.Conflict.ID), logger.Err(err))
			}
		}
	})
}
