package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/aeonsync/core/internal/logger"
	"github.com/aeonsync/core/pkg/conflict"
	"github.com/aeonsync/core/pkg/operation"
	"github.com/aeonsync/core/pkg/queue"
	"github.com/aeonsync/core/pkg/sync"
)

// pollInterval is how often the driver checks the queue for fresh
// batch candidates when idle.
const pollInterval = 500 * time.Millisecond

// Driver ties the queue, sync coordinator, conflict resolver, and a
// transport together into the actual sync loop: the coordinator and
// resolver only model state transitions, nothing in them schedules a
// wall clock, so something has to pull candidates, hand batches to
// the transport, and reschedule retries. That something is the
// driver.
type Driver struct {
	queue       *queue.Queue
	coordinator *sync.Coordinator
	resolver    *conflict.Resolver
	transport   sync.Transport
	cfg         sync.Config

	cancel context.CancelFunc
	done   chan struct{}
}

func newDriver(q *queue.Queue, coordinator *sync.Coordinator, resolver *conflict.Resolver, transport sync.Transport, cfg sync.Config) *Driver {
	return &Driver{
		queue:       q,
		coordinator: coordinator,
		resolver:    resolver,
		transport:   transport,
		cfg:         cfg,
		done:        make(chan struct{}),
	}
}

// Start runs the sync loop in a background goroutine until Stop is
// called or ctx is canceled.
func (d *Driver) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	go d.run(loopCtx)
}

// Stop requests the loop to exit and waits for it to finish.
func (d *Driver) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	<-d.done
}

func (d *Driver) run(ctx context.Context) {
	defer close(d.done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.coordinator.NetworkState() == operation.NetworkOffline {
				continue
			}
			d.tick(ctx)
		}
	}
}

// tick drains up to one batch's worth of pending operations and drives
// it through the coordinator's batch lifecycle and the transport.
func (d *Driver) tick(ctx context.Context) {
	maxSize, maxBytes := d.coordinator.BatchLimits()
	candidates := d.queue.NextBatchCandidates(maxSize, maxBytes)
	if len(candidates) == 0 {
		return
	}

	ids := make([]string, 0, len(candidates))
	for _, op := range candidates {
		ids = append(ids, op.ID)
	}
	if err := d.queue.MarkSyncing(ids); err != nil {
		logger.Warn("failed to mark operations syncing", logger.Err(err))
		return
	}

	batch := d.coordinator.CreateSyncBatch(candidates)
	if err := d.coordinator.StartSyncBatch(batch.BatchID); err != nil {
		logger.Warn("failed to start batch", logger.BatchID(batch.BatchID), logger.Err(err))
		d.coordinator.Clear(batch.BatchID)
		return
	}

	d.sendBatch(ctx, batch)
}

func (d *Driver) sendBatch(ctx context.Context, batch *operation.Batch) {
	sendCtx := ctx
	var cancel context.CancelFunc
	if d.cfg.BatchTimeoutMs > 0 {
		sendCtx, cancel = context.WithTimeout(ctx, time.Duration(d.cfg.BatchTimeoutMs)*time.Millisecond)
		defer cancel()
	}

	result, err := d.transport.Send(sendCtx, batch)
	if err != nil {
		d.handleBatchError(batch, err)
		return
	}

	for _, c := range result.Conflicts {
		local, ok := d.queue.Get(c.OperationID)
		if !ok || c.RemoteOperation == nil {
			continue
		}
		d.resolver.Evaluate(local, c.RemoteOperation)
	}

	for _, id := range result.Synced {
		if err := d.queue.MarkSynced(id); err != nil {
			logger.Warn("failed to mark operation synced", logger.OperationID(id), logger.Err(err))
		}
	}
	for _, f := range result.Failed {
		if err := d.queue.MarkFailed(f.OperationID, errString(f.Error), f.Retryable); err != nil {
			logger.Warn("failed to mark operation failed", logger.OperationID(f.OperationID), logger.Err(err))
		}
	}

	failedIDs := make([]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failedIDs = append(failedIDs, f.OperationID)
	}
	if err := d.coordinator.CompleteSyncBatch(batch.BatchID, result.Success, result.Synced, failedIDs); err != nil {
		logger.Warn("failed to complete batch", logger.BatchID(batch.BatchID), logger.Err(err))
	}
}

func (d *Driver) handleBatchError(batch *operation.Batch, cause error) {
	if err := d.coordinator.FailSyncBatch(batch.BatchID, cause, true); err != nil {
		logger.Warn("failed to record batch failure", logger.BatchID(batch.BatchID), logger.Err(err))
		return
	}

	delayMs := d.coordinator.RetryDelayMs(batch.AttemptCount + 1)
	jitterMs := rand.Int63n(delayMs/4 + 1)
	time.AfterFunc(time.Duration(delayMs+jitterMs)*time.Millisecond, func() {
		for _, op := range batch.Operations {
			if err := d.queue.MarkFailed(op.ID, cause, true); err != nil {
				logger.Warn("failed to requeue operation after batch failure", logger.OperationID(op.ID), logger.Err(err))
			}
		}
	})
}

// errString wraps a transport-reported failure message as an error so
// it can flow through queue.MarkFailed's cause parameter.
func errString(msg string) error {
	if msg == "" {
		return nil
	}
	return errMsg(msg)
}

type errMsg string

func (e errMsg) Error() string { return string(e) }
