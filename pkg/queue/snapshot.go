package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aeonsync/core/pkg/operation"
)

// snapshotEntry is the wire shape of one queued operation in a
// Snapshot/Restore byte payload. EncryptedData already carries whatever
// framing EncryptOperation produced; Restore does not re-derive keys.
type snapshotEntry struct {
	ID                string         `json:"id"`
	Type              operation.Type `json:"type"`
	SessionID         string         `json:"sessionId"`
	Status            string         `json:"status"`
	Priority          string         `json:"priority"`
	EncryptedData     []byte         `json:"encryptedData"`
	EncryptionVersion int            `json:"encryptionVersion"`
	BytesSize         int            `json:"bytesSize"`
	CreatedAt         int64          `json:"createdAt"`
	SyncedAt          int64          `json:"syncedAt"`
	RetryCount        int            `json:"retryCount"`
	MaxRetries        int            `json:"maxRetries"`
	FailedCount       int            `json:"failedCount"`
	LastError         string         `json:"lastError"`
}

// Snapshot serializes the whole in-memory queue, independent of any
// configured storage.Adapter. Used for debugging dumps and for wiring
// a custom transport in place of a storage.Adapter.
func (q *Queue) Snapshot() ([]byte, error) {
	q.mu.Lock()
	entries := make([]snapshotEntry, 0, len(q.operations))
	for _, op := range q.operations {
		entries = append(entries, snapshotEntry{
			ID:                op.ID,
			Type:              op.Type,
			SessionID:         op.SessionID,
			Status:            string(op.Status),
			Priority:          string(op.Priority),
			EncryptedData:     op.EncryptedData,
			EncryptionVersion: op.EncryptionVersion,
			BytesSize:         op.BytesSize,
			CreatedAt:         op.CreatedAt,
			SyncedAt:          op.SyncedAt,
			RetryCount:        op.RetryCount,
			MaxRetries:        op.MaxRetries,
			FailedCount:       op.FailedCount,
			LastError:         op.LastError,
		})
	}
	q.mu.Unlock()

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("queue: snapshot marshal: %w", err)
	}
	return data, nil
}

// Restore merges a previously taken Snapshot back into the queue.
// Operations already present by ID are left untouched.
func (q *Queue) Restore(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("queue: restore unmarshal: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range entries {
		if _, exists := q.operations[e.ID]; exists {
			continue
		}
		op := &operation.Operation{
			ID:                e.ID,
			Type:              e.Type,
			SessionID:         e.SessionID,
			Status:            operation.Status(e.Status),
			Priority:          operation.Priority(e.Priority),
			EncryptedData:     e.EncryptedData,
			EncryptionVersion: e.EncryptionVersion,
			BytesSize:         e.BytesSize,
			CreatedAt:         e.CreatedAt,
			SyncedAt:          e.SyncedAt,
			RetryCount:        e.RetryCount,
			MaxRetries:        e.MaxRetries,
			FailedCount:       e.FailedCount,
			LastError:         e.LastError,
		}
		// A restored operation with encryptionVersion 0 is assigned
		// the current version; any other value is kept unchanged,
		// and no warning is emitted.
		if op.EncryptionVersion == 0 {
			op.EncryptionVersion = operation.CurrentEncryptionVersion
		}
		q.operations[e.ID] = op
		q.totalBytes += op.BytesSize
	}
	return nil
}

// RestoreFromAdapter loads the configured storage.Adapter's persisted
// records into the queue. Metadata fields populate the bookkeeping
// columns that are not part of the encrypted frame itself.
func (q *Queue) RestoreFromAdapter(ctx context.Context) error {
	if q.store == nil {
		return nil
	}
	records, err := q.store.Restore(ctx)
	if err != nil {
		return fmt.Errorf("queue: restore from adapter: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, r := range records {
		if _, exists := q.operations[r.ID]; exists {
			continue
		}
		op := &operation.Operation{
			ID:            r.ID,
			EncryptedData: r.EncryptedData,
			BytesSize:     len(r.EncryptedData),
		}
		applyMetadata(op, r.Metadata)
		q.operations[r.ID] = op
		q.totalBytes += op.BytesSize
	}
	return nil
}

func applyMetadata(op *operation.Operation, meta map[string]any) {
	if meta == nil {
		return
	}
	if v, ok := meta["type"].(string); ok {
		op.Type = operation.Type(v)
	}
	if v, ok := meta["sessionId"].(string); ok {
		op.SessionID = v
	}
	if v, ok := meta["status"].(string); ok {
		op.Status = operation.Status(v)
	}
	if v, ok := meta["priority"].(string); ok {
		op.Priority = operation.Priority(v)
	}
	if v, ok := meta["createdAt"].(float64); ok {
		op.CreatedAt = int64(v)
	}
	if v, ok := meta["syncedAt"].(float64); ok {
		op.SyncedAt = int64(v)
	}
	if v, ok := meta["retryCount"].(float64); ok {
		op.RetryCount = int(v)
	}
	if v, ok := meta["maxRetries"].(float64); ok {
		op.MaxRetries = int(v)
	}
	if v, ok := meta["failedCount"].(float64); ok {
		op.FailedCount = int(v)
	}
	if v, ok := meta["lastError"].(string); ok {
		op.LastError = v
	}
	if v, ok := meta["encryptionVersion"].(float64); ok {
		op.EncryptionVersion = int(v)
	}
}
