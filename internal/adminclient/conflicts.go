package adminclient

import (
	"github.com/aeonsync/core/pkg/conflict"
	"github.com/aeonsync/core/pkg/operation"
)

// ListConflicts returns every conflict currently retained for manual
// resolution.
func (c *Client) ListConflicts() ([]*operation.Conflict, error) {
	var out []*operation.Conflict
	if err := c.get("/api/v1/conflicts/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConflictStats returns the resolver's lifetime counters.
func (c *Client) ConflictStats() (conflict.Stats, error) {
	var out conflict.Stats
	err := c.get("/api/v1/conflicts/stats", &out)
	return out, err
}

// ResolveRequest selects a strategy an operator applies to a retained
// conflict.
type ResolveRequest struct {
	Strategy     operation.Strategy `json:"strategy"`
	ResolvedData map[string]any     `json:"resolvedData,omitempty"`
}

// ResolveConflict applies a resolution strategy to conflict id.
func (c *Client) ResolveConflict(id string, req ResolveRequest) (*operation.Conflict, error) {
	var out operation.Conflict
	if err := c.post("/api/v1/conflicts/"+id+"/resolve", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the daemon's liveness endpoint.
func (c *Client) Health() (map[string]string, error) {
	var out map[string]string
	err := c.get("/health", &out)
	return out, err
}
