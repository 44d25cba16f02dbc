package sync

import (
	"context"

	"github.com/aeonsync/core/pkg/operation"
)

// Transport is the external collaborator the coordinator's owner
// supplies to actually move a batch to a server. The coordinator and
// queue never call this directly; it is the driver (cmd/aeonsyncd)
// that calls Send and feeds the result back into
// StartSyncBatch/CompleteSyncBatch/FailSyncBatch and the conflict
// resolver.
type Transport interface {
	Send(ctx context.Context, batch *operation.Batch) (SyncResult, error)
}

// SyncFailure reports one operation a transport could not sync.
type SyncFailure struct {
	OperationID string
	Error       string
	Retryable   bool
}

// SyncConflict reports one operation whose remote state diverged from
// what the batch sent.
type SyncConflict struct {
	OperationID     string
	RemoteOperation *operation.Operation
}

// SyncResult is the transport's response to a batch send.
type SyncResult struct {
	Success         bool
	Synced          []string
	Failed          []SyncFailure
	Conflicts       []SyncConflict
	ServerTimestamp int64
}
