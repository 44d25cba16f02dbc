package conflictstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeonsync/core/pkg/operation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(context.Background(), Config{Driver: DriverSQLite, DSN: filepath.Join(dir, "conflicts.db")})
	require.NoError(t, err)
	return s
}

func testConflict(id string) *operation.Conflict {
	return &operation.Conflict{
		ID:          id,
		OperationID: "op_1",
		SessionID:   "session-1",
		Type:        operation.ConflictUpdateUpdate,
		Severity:    operation.SeverityMedium,
		LocalData:   map[string]any{"title": "local"},
		RemoteData:  map[string]any{"title": "remote"},
		DetectedAt:  1000,
	}
}

func TestSaveAndGetRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testConflict("conflict_1")

	require.NoError(t, s.Save(ctx, c))
	got, err := s.Get(ctx, "conflict_1")
	require.NoError(t, err)
	assert.Equal(t, c.SessionID, got.SessionID)
	assert.Equal(t, c.LocalData["title"], got.LocalData["title"])
	assert.Nil(t, got.Resolution)
}

func TestListUnresolvedExcludesResolved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	unresolved := testConflict("conflict_unresolved")
	resolved := testConflict("conflict_resolved")
	resolved.Resolution = &operation.Resolution{
		Strategy:     operation.StrategyLocalWins,
		ResolvedData: resolved.LocalData,
		ResolvedAt:   2000,
	}

	require.NoError(t, s.Save(ctx, unresolved))
	require.NoError(t, s.Save(ctx, resolved))

	list, err := s.ListUnresolved(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "conflict_unresolved", list[0].ID)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := testConflict("conflict_del")
	require.NoError(t, s.Save(ctx, c))
	require.NoError(t, s.Delete(ctx, c.ID))
	_, err := s.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
