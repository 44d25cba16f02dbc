package eventbus

import "github.com/aeonsync/core/pkg/operation"

// OperationEvent is the payload for operation:* topics.
type OperationEvent struct {
	OperationID string
	Status      operation.Status
}

// RetryEvent is the payload for operation:retry.
type RetryEvent struct {
	OperationID string
	RetryCount  int
	Error       string
}

// FailedMaxRetriesEvent is the payload for operation:failed_max_retries.
type FailedMaxRetriesEvent struct {
	OperationID string
	Error       string
}

// QueueErrorEvent is the payload for queue:error.
type QueueErrorEvent struct {
	OperationID string // empty if not tied to a specific enqueue attempt
	Err         error
}

// QueueCompactedEvent is the payload for queue:compacted.
type QueueCompactedEvent struct {
	RemovedCount int
	FreedBytes   int
}

// D1SyncedEvent is the payload for d1:synced, emitted after a snapshot
// flush to the storage adapter.
type D1SyncedEvent struct {
	RecordCount int
	Bytes       int
}

// NetworkChangedEvent is the payload for network:changed; network:online
// and network:offline are published with a nil payload.
type NetworkChangedEvent struct {
	PreviousState operation.NetworkState
	NewState      operation.NetworkState
	Bandwidth     *operation.BandwidthProfile
	Timestamp     int64
}

// BatchEvent is the payload for batch:created and batch:started.
type BatchEvent struct {
	BatchID string
	Batch   *operation.Batch
}

// BatchProgressEvent is the payload for batch:progress.
type BatchProgressEvent struct {
	BatchID                string
	SyncedCount            int
	SyncedBytes             int
	EstimatedTimeRemainingMs float64
}

// BatchCompletedEvent is the payload for batch:completed.
type BatchCompletedEvent struct {
	BatchID string
	Success bool
	Synced  []string
	Failed  []string
}

// BatchRetryEvent is the payload for batch:retry.
type BatchRetryEvent struct {
	BatchID string
	Attempt int
	Err     error
}

// BatchFailedEvent is the payload for batch:failed.
type BatchFailedEvent struct {
	BatchID string
	Err     error
}

// ConflictEvent is the payload for conflict:detected, conflict:resolved,
// and conflict:retained.
type ConflictEvent struct {
	Conflict *operation.Conflict
}
