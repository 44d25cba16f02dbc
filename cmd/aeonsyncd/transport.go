package main

import (
	"context"
	"time"

	"github.com/aeonsync/core/pkg/operation"
	"github.com/aeonsync/core/pkg/sync"
)

// loopbackTransport is a sync.Transport that accepts every batch
// immediately, standing in for the real wire transport a deployment
// would plug in (the network client is an external collaborator this
// module does not own). It exists so aeonsyncd can be run and
// observed end to end without a server on the other end.
type loopbackTransport struct{}

func newLoopbackTransport() *loopbackTransport {
	return &loopbackTransport{}
}

func (t *loopbackTransport) Send(ctx context.Context, batch *operation.Batch) (sync.SyncResult, error) {
	synced := make([]string, 0, len(batch.Operations))
	for _, op := range batch.Operations {
		synced = append(synced, op.ID)
	}
	return sync.SyncResult{
		Success:         true,
		Synced:          synced,
		ServerTimestamp: time.Now().UnixMilli(),
	}, nil
}
