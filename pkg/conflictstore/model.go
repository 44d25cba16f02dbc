package conflictstore

import (
	"encoding/json"
	"time"

	"github.com/aeonsync/core/pkg/operation"
)

// conflictRecord is the GORM model backing the conflicts table. JSON
// payloads are held in plain string fields rather than a typed JSON
// wrapper; sqlite's AutoMigrate creates text columns for them, while the
// Postgres migration declares them JSONB.
type conflictRecord struct {
	ID                 string `gorm:"primaryKey"`
	OperationID        string `gorm:"index"`
	SessionID          string `gorm:"index"`
	Type               string
	Severity           string
	LocalData          string
	RemoteData         string
	ConflictingKeys    string
	DetectedAt         int64
	ResolutionStrategy string
	ResolvedData       string
	ResolvedAt         int64 `gorm:"index"`
	CreatedAt          time.Time
}

func (conflictRecord) TableName() string { return "conflicts" }

func toRecord(c *operation.Conflict) (*conflictRecord, error) {
	local, err := json.Marshal(c.LocalData)
	if err != nil {
		return nil, err
	}
	remote, err := json.Marshal(c.RemoteData)
	if err != nil {
		return nil, err
	}
	keys, err := json.Marshal(c.ConflictingKeys)
	if err != nil {
		return nil, err
	}
	rec := &conflictRecord{
		ID:              c.ID,
		OperationID:     c.OperationID,
		SessionID:       c.SessionID,
		Type:            string(c.Type),
		Severity:        string(c.Severity),
		LocalData:       string(local),
		RemoteData:      string(remote),
		ConflictingKeys: string(keys),
		DetectedAt:      c.DetectedAt,
	}
	if c.Resolution != nil {
		resolved, err := json.Marshal(c.Resolution.ResolvedData)
		if err != nil {
			return nil, err
		}
		rec.ResolutionStrategy = string(c.Resolution.Strategy)
		rec.ResolvedData = string(resolved)
		rec.ResolvedAt = c.Resolution.ResolvedAt
	}
	return rec, nil
}

func fromRecord(rec *conflictRecord) (*operation.Conflict, error) {
	c := &operation.Conflict{
		ID:          rec.ID,
		OperationID: rec.OperationID,
		SessionID:   rec.SessionID,
		Type:        operation.ConflictType(rec.Type),
		Severity:    operation.Severity(rec.Severity),
		DetectedAt:  rec.DetectedAt,
	}
	if err := json.Unmarshal([]byte(rec.LocalData), &c.LocalData); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rec.RemoteData), &c.RemoteData); err != nil {
		return nil, err
	}
	if rec.ConflictingKeys != "" {
		if err := json.Unmarshal([]byte(rec.ConflictingKeys), &c.ConflictingKeys); err != nil {
			return nil, err
		}
	}
	if rec.ResolutionStrategy != "" {
		res := &operation.Resolution{
			Strategy:   operation.Strategy(rec.ResolutionStrategy),
			ResolvedAt: rec.ResolvedAt,
		}
		if rec.ResolvedData != "" {
			if err := json.Unmarshal([]byte(rec.ResolvedData), &res.ResolvedData); err != nil {
				return nil, err
			}
		}
		c.Resolution = res
	}
	return c, nil
}
