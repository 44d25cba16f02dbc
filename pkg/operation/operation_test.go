package operation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^op_[0-9a-z]+_[0-9a-z]+$`)

func TestGenerateID(t *testing.T) {
	t.Run("MatchesFormat", func(t *testing.T) {
		id := GenerateID()
		assert.Regexp(t, idPattern, id)
	})

	t.Run("UniqueWithinProcess", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id := GenerateID()
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})
}

func TestGenerateBatchAndConflictID(t *testing.T) {
	b1, b2 := GenerateBatchID(), GenerateBatchID()
	assert.NotEqual(t, b1, b2)
	assert.Contains(t, b1, "batch_")

	c1, c2 := GenerateConflictID(), GenerateConflictID()
	assert.NotEqual(t, c1, c2)
	assert.Contains(t, c1, "conflict_")
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityNormal.Rank())
	assert.Less(t, PriorityNormal.Rank(), PriorityLow.Rank())
}

func TestStatusCanTransition(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusSyncing))
	assert.False(t, StatusPending.CanTransition(StatusSynced))
	assert.True(t, StatusSyncing.CanTransition(StatusSynced))
	assert.True(t, StatusSyncing.CanTransition(StatusFailed))
	assert.True(t, StatusFailed.CanTransition(StatusPending))
	assert.False(t, StatusSynced.CanTransition(StatusPending))
}

func TestHighestPriority(t *testing.T) {
	ops := []*Operation{
		{Priority: PriorityLow},
		{Priority: PriorityHigh},
		{Priority: PriorityNormal},
	}
	assert.Equal(t, PriorityHigh, HighestPriority(ops))
	assert.Equal(t, PriorityNormal, HighestPriority(nil))
}

func TestEncodable(t *testing.T) {
	op := &Operation{
		Type:              TypeUpdate,
		SessionID:         "s1",
		Data:              map[string]any{"value": "x"},
		Priority:          PriorityNormal,
		CreatedAt:         1000,
		EncryptionVersion: 1,
		ID:                "op_xyz",
		Status:            StatusPending,
	}
	enc := op.Encodable()
	assert.Equal(t, TypeUpdate, enc.Type)
	assert.Equal(t, "s1", enc.SessionID)
	assert.Equal(t, int64(1000), enc.CreatedAt)
}

func TestMarshalCanonical(t *testing.T) {
	a := map[string]any{"b": 1, "a": 2}
	out, err := MarshalCanonical(a)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(out))
}
