package adminclient

import (
	"github.com/aeonsync/core/pkg/operation"
	"github.com/aeonsync/core/pkg/sync"
)

// QueueStats returns the encrypted queue's depth/capacity counters.
func (c *Client) QueueStats() (operation.QueueStats, error) {
	var out operation.QueueStats
	err := c.get("/api/v1/queue/stats", &out)
	return out, err
}

// SyncStats returns the sync coordinator's batch lifecycle counters.
func (c *Client) SyncStats() (sync.Stats, error) {
	var out sync.Stats
	err := c.get("/api/v1/sync/stats", &out)
	return out, err
}
