package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeonsync/core/pkg/operation"
)

func testOp() *operation.Operation {
	return &operation.Operation{
		Type:              operation.TypeUpdate,
		SessionID:         "s1",
		Data:              map[string]any{"value": "x"},
		Priority:          operation.PriorityNormal,
		CreatedAt:         1000,
		EncryptionVersion: 1,
	}
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	cache := NewKeyCache()
	key, err := cache.DeriveFromSession("s1", "test")
	require.NoError(t, err)

	op := testOp()
	frame, err := EncryptOperation(key, op)
	require.NoError(t, err)

	assert.Equal(t, byte(1), frame[0])
	assert.GreaterOrEqual(t, len(frame), 29)

	out, err := DecryptOperation(key, frame)
	require.NoError(t, err)
	assert.Equal(t, op.Type, out.Type)
	assert.Equal(t, op.SessionID, out.SessionID)
	assert.Equal(t, op.Priority, out.Priority)
	assert.Equal(t, op.CreatedAt, out.CreatedAt)
	assert.Equal(t, op.EncryptionVersion, out.EncryptionVersion)
	assert.Equal(t, op.Data["value"], out.Data["value"])
}

func TestTamperDetection(t *testing.T) {
	cache := NewKeyCache()
	key, err := cache.DeriveFromSession("s1", "test")
	require.NoError(t, err)

	frame, err := EncryptOperation(key, testOp())
	require.NoError(t, err)
	require.Greater(t, len(frame), 20)

	frame[20] ^= 0xFF

	_, err = DecryptOperation(key, frame)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestWrongKeyFails(t *testing.T) {
	cache := NewKeyCache()
	key1, err := cache.DeriveFromSession("s1", "test")
	require.NoError(t, err)
	key2, err := cache.DeriveFromSession("s2", "test")
	require.NoError(t, err)

	frame, err := EncryptOperation(key1, testOp())
	require.NoError(t, err)

	_, err = DecryptOperation(key2, frame)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestFreshNonceYieldsDistinctCiphertext(t *testing.T) {
	cache := NewKeyCache()
	key, err := cache.DeriveFromSession("s1", "test")
	require.NoError(t, err)

	op := testOp()
	f1, err := EncryptOperation(key, op)
	require.NoError(t, err)
	f2, err := EncryptOperation(key, op)
	require.NoError(t, err)

	assert.NotEqual(t, f1, f2)
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	cache := NewKeyCache()
	key, err := cache.DeriveFromSession("s1", "test")
	require.NoError(t, err)

	_, err = DecryptOperation(key, make([]byte, 28))
	assert.ErrorIs(t, err, ErrMalformedFraming)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	cache := NewKeyCache()
	key, err := cache.DeriveFromSession("s1", "test")
	require.NoError(t, err)

	frame, err := EncryptOperation(key, testOp())
	require.NoError(t, err)
	frame[0] = 2

	_, err = DecryptOperation(key, frame)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestEstimateSize(t *testing.T) {
	plaintext := []byte(`{"a":1}`)
	assert.Equal(t, len(plaintext)+1+12+16+16, EstimateSize(plaintext))
}

func TestBatchEncryptDecryptRoundtrip(t *testing.T) {
	cache := NewKeyCache()
	key, err := cache.DeriveFromSession("s1", "test")
	require.NoError(t, err)

	ops := []*operation.Operation{testOp(), testOp()}
	payload, err := EncryptBatch(key, ops, 12345, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, payload.Version)
	assert.Len(t, payload.Nonce, 12)

	envelope, err := DecryptBatch(key, payload)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), envelope.Timestamp)
	assert.Equal(t, "user-1", envelope.UserID)
	assert.Len(t, envelope.Operations, 2)
}

func TestKeyCacheMemoizes(t *testing.T) {
	cache := NewKeyCache()
	k1, err := cache.DeriveFromSession("s1", "ctx")
	require.NoError(t, err)
	k2, err := cache.DeriveFromSession("s1", "ctx")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Equal(t, 1, cache.Len())

	cache.RemoveSession("s1", "ctx")
	assert.Equal(t, 0, cache.Len())
}

func TestDeriveFromUCANDistinctFromSession(t *testing.T) {
	cache := NewKeyCache()
	ucanKey, err := cache.DeriveFromUCAN([]byte("signing-key-material"), "user-1", "ctx")
	require.NoError(t, err)
	sessionKey, err := cache.DeriveFromSession("user-1", "ctx")
	require.NoError(t, err)
	assert.NotEqual(t, ucanKey, sessionKey)
}
