package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeonsync/core/pkg/crypto"
	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/operation"
	"github.com/aeonsync/core/pkg/storage/memstore"
)

func newTestQueue(t *testing.T) (*Queue, *eventbus.Bus) {
	t.Helper()
	bus := eventbus.New()
	cfg := DefaultConfig()
	q := New(cfg, bus, crypto.NewKeyCache(), memstore.New())
	return q, bus
}

func draft(sessionID string, p operation.Priority) operation.Draft {
	return operation.Draft{
		Type:      operation.TypeUpdate,
		SessionID: sessionID,
		Data:      map[string]any{"field": "value"},
		Priority:  p,
	}
}

func TestEnqueuePublishesQueuedEvent(t *testing.T) {
	q, bus := newTestQueue(t)
	var got eventbus.OperationEvent
	bus.Subscribe(eventbus.TopicOperationQueued, func(payload any) {
		got = payload.(eventbus.OperationEvent)
	})

	id, err := q.Enqueue(context.Background(), draft("sess-1", operation.PriorityNormal))
	require.NoError(t, err)
	assert.Equal(t, id, got.OperationID)
	assert.Equal(t, operation.StatusPending, got.Status)

	op, ok := q.Get(id)
	require.True(t, ok)
	assert.NotEmpty(t, op.EncryptedData)
	assert.Equal(t, operation.CurrentEncryptionVersion, op.EncryptionVersion)
}

func TestNextBatchCandidatesOrdersByPriorityThenFIFO(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	low, _ := q.Enqueue(ctx, draft("s", operation.PriorityLow))
	high, _ := q.Enqueue(ctx, draft("s", operation.PriorityHigh))
	normal, _ := q.Enqueue(ctx, draft("s", operation.PriorityNormal))

	candidates := q.NextBatchCandidates(0, 0)
	require.Len(t, candidates, 3)
	assert.Equal(t, high, candidates[0].ID)
	assert.Equal(t, normal, candidates[1].ID)
	assert.Equal(t, low, candidates[2].ID)
}

func TestNextBatchCandidatesRespectsMaxCount(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := q.Enqueue(ctx, draft("s", operation.PriorityNormal))
		require.NoError(t, err)
	}
	candidates := q.NextBatchCandidates(2, 0)
	assert.Len(t, candidates, 2)
}

func TestMarkSyncingSyncedLifecycle(t *testing.T) {
	q, bus := newTestQueue(t)
	ctx := context.Background()
	id, err := q.Enqueue(ctx, draft("s", operation.PriorityNormal))
	require.NoError(t, err)

	var syncedEvt eventbus.OperationEvent
	bus.Subscribe(eventbus.TopicOperationSynced, func(payload any) {
		syncedEvt = payload.(eventbus.OperationEvent)
	})

	require.NoError(t, q.MarkSyncing([]string{id}))
	op, _ := q.Get(id)
	assert.Equal(t, operation.StatusSyncing, op.Status)

	require.NoError(t, q.MarkSynced(id))
	op, _ = q.Get(id)
	assert.Equal(t, operation.StatusSynced, op.Status)
	assert.NotZero(t, op.SyncedAt)
	assert.Equal(t, id, syncedEvt.OperationID)
}

func TestMarkFailedRetriesThenExhausts(t *testing.T) {
	q, bus := newTestQueue(t)
	ctx := context.Background()
	d := draft("s", operation.PriorityNormal)
	d.MaxRetries = 2
	id, err := q.Enqueue(ctx, d)
	require.NoError(t, err)

	var exhausted bool
	bus.Subscribe(eventbus.TopicOperationFailedMax, func(payload any) { exhausted = true })

	require.NoError(t, q.MarkFailed(id, errors.New("network down"), true))
	op, _ := q.Get(id)
	assert.Equal(t, operation.StatusPending, op.Status)
	assert.Equal(t, 1, op.RetryCount)
	assert.False(t, exhausted)

	require.NoError(t, q.MarkFailed(id, errors.New("network down"), true))
	op, _ = q.Get(id)
	assert.Equal(t, operation.StatusFailed, op.Status)
	assert.True(t, exhausted)
}

func TestMarkFailedNonRetryableGoesStraightToFailed(t *testing.T) {
	q, bus := newTestQueue(t)
	ctx := context.Background()
	d := draft("s", operation.PriorityNormal)
	d.MaxRetries = 5
	id, err := q.Enqueue(ctx, d)
	require.NoError(t, err)

	var exhausted bool
	bus.Subscribe(eventbus.TopicOperationFailedMax, func(payload any) { exhausted = true })

	require.NoError(t, q.MarkFailed(id, errors.New("authentication failed"), false))
	op, _ := q.Get(id)
	assert.Equal(t, operation.StatusFailed, op.Status)
	assert.True(t, exhausted)
	assert.Zero(t, op.RetryCount)
	assert.Equal(t, 1, op.FailedCount)
}

func TestDeleteRemovesOperationAndFreesBytes(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	id, err := q.Enqueue(ctx, draft("s", operation.PriorityNormal))
	require.NoError(t, err)

	statsBefore := q.Stats()
	assert.Equal(t, 1, statsBefore.TotalOperations)

	require.NoError(t, q.Delete(ctx, id))
	_, ok := q.Get(id)
	assert.False(t, ok)

	statsAfter := q.Stats()
	assert.Equal(t, 0, statsAfter.TotalOperations)
	assert.Equal(t, 0, statsAfter.TotalBytes)
}

func TestSnapshotRestoreRoundtrip(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	id, err := q.Enqueue(ctx, draft("s", operation.PriorityNormal))
	require.NoError(t, err)

	data, err := q.Snapshot()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	q2, _ := newTestQueue(t)
	require.NoError(t, q2.Restore(data))
	op, ok := q2.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, op.ID)
}

func TestCompactionRemovesStaleSyncedOperations(t *testing.T) {
	q, bus := newTestQueue(t)
	q.cfg.SyncedCleanupAge = time.Millisecond
	ctx := context.Background()

	id, err := q.Enqueue(ctx, draft("s", operation.PriorityNormal))
	require.NoError(t, err)
	require.NoError(t, q.MarkSyncing([]string{id}))
	require.NoError(t, q.MarkSynced(id))

	time.Sleep(5 * time.Millisecond)

	var compacted eventbus.QueueCompactedEvent
	bus.Subscribe(eventbus.TopicQueueCompacted, func(payload any) {
		compacted = payload.(eventbus.QueueCompactedEvent)
	})

	freed := q.compact(ctx)
	assert.Positive(t, freed)
	assert.Equal(t, 1, compacted.RemovedCount)

	_, ok := q.Get(id)
	assert.False(t, ok)
}

func TestEnqueueRejectsWhenOverCapacityAndNothingToCompact(t *testing.T) {
	q, _ := newTestQueue(t)
	q.cfg.MaxLocalCapacity = 10
	_, err := q.Enqueue(context.Background(), draft("s", operation.PriorityNormal))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}
