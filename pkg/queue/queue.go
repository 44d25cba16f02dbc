// Package queue implements the encrypted local operation queue (C3):
// bounded, priority-ordered storage for operations awaiting sync, with
// periodic durable snapshotting and compaction of stale synced entries.
package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aeonsync/core/internal/logger"
	"github.com/aeonsync/core/internal/telemetry"
	"github.com/aeonsync/core/pkg/crypto"
	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/operation"
	"github.com/aeonsync/core/pkg/storage"
)

// ErrNotFound is returned when an operation id is not present in the queue.
var ErrNotFound = fmt.Errorf("queue: operation not found")

// ErrCapacityExceeded is returned by Enqueue when the queue is full and
// compaction did not free enough room for the new operation.
var ErrCapacityExceeded = fmt.Errorf("queue: capacity exceeded")

// Queue is the encrypted, priority-ordered operation queue described by
// component C3. It is safe for concurrent use.
type Queue struct {
	cfg   Config
	bus   *eventbus.Bus
	keys  *crypto.KeyCache
	store storage.Adapter

	mu               sync.Mutex
	operations       map[string]*operation.Operation
	totalBytes       int
	lastCompactionAt int64
	metrics          Metrics

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New constructs a Queue. store may be nil, in which case periodic
// flush and RestoreFromAdapter are no-ops (useful for pure in-memory tests).
func New(cfg Config, bus *eventbus.Bus, keys *crypto.KeyCache, store storage.Adapter) *Queue {
	return &Queue{
		cfg:        cfg.withDefaults(),
		bus:        bus,
		keys:       keys,
		store:      store,
		operations: make(map[string]*operation.Operation),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the periodic durable-snapshot worker. It is safe to
// call on a Queue with a nil storage adapter (the worker becomes a
// no-op ticker).
func (q *Queue) Start(ctx context.Context) {
	go q.flushLoop(ctx)
}

// Stop halts the background flush worker and waits for it to exit.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.stopCh) })
	<-q.doneCh
	q.bus.Publish(eventbus.TopicShutdown, nil)
}

func (q *Queue) flushLoop(ctx context.Context) {
	defer close(q.doneCh)
	ticker := time.NewTicker(q.cfg.D1SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-q.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := q.flush(ctx); err != nil {
				logger.Error("queue flush failed", logger.Err(err))
			}
		}
	}
}

func (q *Queue) flush(ctx context.Context) error {
	if q.store == nil {
		return nil
	}
	ctx, span := telemetry.StartQueueSpan(ctx, telemetry.SpanQueueFlush)
	defer span.End()

	records := q.records()
	if err := q.store.Snapshot(ctx, records); err != nil {
		err = fmt.Errorf("queue: snapshot: %w", err)
		telemetry.RecordError(ctx, err)
		return err
	}
	bytes := 0
	for _, r := range records {
		bytes += len(r.EncryptedData)
	}
	telemetry.SetAttributes(ctx, telemetry.QueueDepth(len(records)), telemetry.QueueBytes(bytes))
	q.bus.Publish(eventbus.TopicD1Synced, eventbus.D1SyncedEvent{RecordCount: len(records), Bytes: bytes})
	return nil
}

func (q *Queue) records() []storage.Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]storage.Record, 0, len(q.operations))
	for id, op := range q.operations {
		out = append(out, storage.Record{
			ID:            id,
			EncryptedData: op.EncryptedData,
			Metadata:      operationMetadata(op),
		})
	}
	return out
}

func operationMetadata(op *operation.Operation) map[string]any {
	return map[string]any{
		"type":              string(op.Type),
		"sessionId":         op.SessionID,
		"status":            string(op.Status),
		"priority":          string(op.Priority),
		"createdAt":         op.CreatedAt,
		"syncedAt":          op.SyncedAt,
		"retryCount":        op.RetryCount,
		"maxRetries":        op.MaxRetries,
		"failedCount":       op.FailedCount,
		"lastError":         op.LastError,
		"encryptionVersion": op.EncryptionVersion,
		"bytesSize":         op.BytesSize,
	}
}

// keyFor resolves the encryption key for an operation per the queue's
// configured derivation mode.
func (q *Queue) keyFor(sessionID string) ([]byte, error) {
	switch q.cfg.KeyDerivation {
	case KeyDerivationUCAN:
		return q.keys.DeriveFromUCAN(q.cfg.SigningKey, q.cfg.UserID, q.cfg.EncryptionContext)
	default:
		return q.keys.DeriveFromSession(sessionID, q.cfg.EncryptionContext)
	}
}

// Enqueue encrypts and stores a new operation, returning its generated ID.
func (q *Queue) Enqueue(ctx context.Context, draft operation.Draft) (string, error) {
	ctx, span := telemetry.StartQueueSpan(ctx, telemetry.SpanQueueEnqueue,
		telemetry.SessionID(draft.SessionID), telemetry.OperationType(string(draft.Type)), telemetry.Priority(string(draft.Priority)))
	defer span.End()

	op := &operation.Operation{
		ID:                operation.GenerateID(),
		Type:              draft.Type,
		SessionID:         draft.SessionID,
		Status:            operation.StatusPending,
		Priority:          draft.Priority,
		Data:              draft.Data,
		CreatedAt:         time.Now().UnixMilli(),
		EncryptionVersion: operation.CurrentEncryptionVersion,
		MaxRetries:        draft.MaxRetries,
	}
	if !op.Priority.Valid() {
		op.Priority = operation.PriorityNormal
	}
	if op.MaxRetries == 0 {
		op.MaxRetries = operation.DefaultMaxRetries
	}

	if q.cfg.EncryptionEnabled {
		key, err := q.keyFor(op.SessionID)
		if err != nil {
			err = fmt.Errorf("queue: derive key: %w", err)
			telemetry.RecordError(ctx, err)
			return "", err
		}
		frame, err := crypto.EncryptOperation(key, op)
		if err != nil {
			err = fmt.Errorf("queue: encrypt: %w", err)
			telemetry.RecordError(ctx, err)
			return "", err
		}
		op.EncryptedData = frame
		op.BytesSize = len(frame)
	} else {
		plain, err := operation.MarshalCanonical(op.Encodable())
		if err != nil {
			err = fmt.Errorf("queue: marshal: %w", err)
			telemetry.RecordError(ctx, err)
			return "", err
		}
		op.EncryptedData = plain
		op.BytesSize = len(plain)
	}

	q.mu.Lock()
	if q.totalBytes+op.BytesSize > q.cfg.MaxLocalCapacity {
		q.mu.Unlock()
		if q.compact(ctx) == 0 {
			telemetry.RecordError(ctx, ErrCapacityExceeded)
			return "", ErrCapacityExceeded
		}
		q.mu.Lock()
		if q.totalBytes+op.BytesSize > q.cfg.MaxLocalCapacity {
			q.mu.Unlock()
			telemetry.RecordError(ctx, ErrCapacityExceeded)
			return "", ErrCapacityExceeded
		}
	}
	q.operations[op.ID] = op
	q.totalBytes += op.BytesSize
	shouldCompact := q.compactionDue()
	q.mu.Unlock()

	telemetry.SetAttributes(ctx, telemetry.OperationID(op.ID), telemetry.BytesSize(op.BytesSize))
	q.bus.Publish(eventbus.TopicOperationQueued, eventbus.OperationEvent{OperationID: op.ID, Status: op.Status})
	if q.metrics != nil {
		q.metrics.RecordEnqueue(string(op.Priority))
		q.reportDepth()
	}
	if shouldCompact {
		q.compact(ctx)
	}
	return op.ID, nil
}

// MarkSyncing transitions a set of operations from pending to syncing,
// used when a batch is dispatched.
func (q *Queue) MarkSyncing(ids []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		op, ok := q.operations[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if !op.Status.CanTransition(operation.StatusSyncing) {
			return fmt.Errorf("queue: invalid transition %s -> syncing for %s", op.Status, id)
		}
		op.Status = operation.StatusSyncing
	}
	for _, id := range ids {
		q.bus.Publish(eventbus.TopicOperationSyncing, eventbus.OperationEvent{OperationID: id, Status: operation.StatusSyncing})
	}
	return nil
}

// MarkSynced transitions an operation to synced and records the sync time.
func (q *Queue) MarkSynced(id string) error {
	q.mu.Lock()
	op, ok := q.operations[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !op.Status.CanTransition(operation.StatusSynced) {
		q.mu.Unlock()
		return fmt.Errorf("queue: invalid transition %s -> synced for %s", op.Status, id)
	}
	op.Status = operation.StatusSynced
	op.SyncedAt = time.Now().UnixMilli()
	q.mu.Unlock()

	q.bus.Publish(eventbus.TopicOperationSynced, eventbus.OperationEvent{OperationID: id, Status: operation.StatusSynced})
	if q.metrics != nil {
		q.metrics.RecordOutcome(string(operation.StatusSynced))
	}
	return nil
}

// MarkFailed records a failed sync attempt. retryable distinguishes
// transport errors (§7 NetworkError) that may be retried up to
// MaxRetries from non-retryable crypto/protocol errors that must never
// mutate the retry counters and instead go straight to terminal
// failed (§7: "Crypto and protocol errors ... never mutate counters
// except to flag failed"). When retryable and retries remain, the
// operation returns to pending for another attempt; once RetryCount
// reaches MaxRetries (or the failure was never retryable to begin
// with) it is marked failed permanently and the failed_max_retries
// event fires.
func (q *Queue) MarkFailed(id string, cause error, retryable bool) error {
	q.mu.Lock()
	op, ok := q.operations[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	op.FailedCount++
	if cause != nil {
		op.LastError = cause.Error()
	}

	if !retryable {
		op.Status = operation.StatusFailed
		q.mu.Unlock()

		q.bus.Publish(eventbus.TopicOperationFailedMax, eventbus.FailedMaxRetriesEvent{OperationID: id, Error: op.LastError})
		if q.metrics != nil {
			q.metrics.RecordOutcome(string(operation.StatusFailed))
		}
		return nil
	}

	op.RetryCount++
	exhausted := op.RetryCount >= op.MaxRetries
	if exhausted {
		op.Status = operation.StatusFailed
	} else {
		op.Status = operation.StatusPending
	}
	retryCount := op.RetryCount
	q.mu.Unlock()

	if exhausted {
		q.bus.Publish(eventbus.TopicOperationFailedMax, eventbus.FailedMaxRetriesEvent{OperationID: id, Error: op.LastError})
		if q.metrics != nil {
			q.metrics.RecordOutcome(string(operation.StatusFailed))
		}
		return nil
	}
	q.bus.Publish(eventbus.TopicOperationRetry, eventbus.RetryEvent{OperationID: id, RetryCount: retryCount, Error: op.LastError})
	if q.metrics != nil {
		q.metrics.RecordOutcome("retry")
	}
	return nil
}

// NextBatchCandidates returns pending operations ordered by priority
// then FIFO (createdAt), capped by maxCount operations and maxBytes
// total size. Feeds the sync coordinator's adaptive batch formation.
func (q *Queue) NextBatchCandidates(maxCount, maxBytes int) []*operation.Operation {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := make([]*operation.Operation, 0)
	for _, op := range q.operations {
		if op.Status == operation.StatusPending {
			pending = append(pending, op)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Priority.Rank() != pending[j].Priority.Rank() {
			return pending[i].Priority.Rank() < pending[j].Priority.Rank()
		}
		if pending[i].CreatedAt != pending[j].CreatedAt {
			return pending[i].CreatedAt < pending[j].CreatedAt
		}
		return pending[i].ID < pending[j].ID
	})

	var out []*operation.Operation
	bytes := 0
	for _, op := range pending {
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		if maxBytes > 0 && bytes+op.BytesSize > maxBytes && len(out) > 0 {
			break
		}
		out = append(out, op)
		bytes += op.BytesSize
	}
	return out
}

// Get returns the operation with the given id.
func (q *Queue) Get(id string) (*operation.Operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	op, ok := q.operations[id]
	return op, ok
}

// Delete permanently removes an operation from the queue.
func (q *Queue) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartQueueSpan(ctx, telemetry.SpanQueueDelete, telemetry.OperationID(id))
	defer span.End()

	q.mu.Lock()
	op, ok := q.operations[id]
	if !ok {
		q.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		telemetry.RecordError(ctx, err)
		return err
	}
	delete(q.operations, id)
	q.totalBytes -= op.BytesSize
	q.mu.Unlock()

	if q.store != nil {
		if err := q.store.Delete(ctx, id); err != nil {
			logger.Warn("queue: storage delete failed", logger.OperationID(id), logger.Err(err))
		}
	}
	if q.metrics != nil {
		q.reportDepth()
	}
	return nil
}

// Stats reports the current queue composition.
func (q *Queue) Stats() operation.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	stats := operation.QueueStats{
		CountByStatus:    make(map[operation.Status]int),
		CountByPriority:  make(map[operation.Priority]int),
		LastCompactionAt: q.lastCompactionAt,
	}
	for _, op := range q.operations {
		stats.TotalOperations++
		stats.TotalBytes += op.BytesSize
		stats.CountByStatus[op.Status]++
		stats.CountByPriority[op.Priority]++
		if op.Status == operation.StatusPending {
			if stats.OldestPendingAt == 0 || op.CreatedAt < stats.OldestPendingAt {
				stats.OldestPendingAt = op.CreatedAt
			}
		}
	}
	return stats
}
