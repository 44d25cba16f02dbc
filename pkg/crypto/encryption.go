package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/aeonsync/core/pkg/operation"
)

const (
	// FrameVersion is the only framing version currently understood.
	FrameVersion = 1

	nonceSize = 12 // 96-bit GCM nonce
	tagSize   = 16 // 128-bit GCM authentication tag

	// minFrameLen is version(1) + nonce(12) + tag(16); anything shorter
	// cannot possibly hold a valid frame.
	minFrameLen = 1 + nonceSize + tagSize // 29
)

// EstimateSize returns the at-rest byte size of plaintext once framed:
// len(JSON) + version(1) + nonce(12) + tag(16) + 16 bytes of slack.
func EstimateSize(plaintext []byte) int {
	return len(plaintext) + 1 + nonceSize + tagSize + 16
}

// EncryptOperation encrypts the canonical field subset of op under key,
// producing the on-disk frame [version|nonce|ciphertext+tag].
func EncryptOperation(key []byte, op *operation.Operation) ([]byte, error) {
	plaintext, err := operation.MarshalCanonical(op.Encodable())
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal operation: %w", err)
	}
	return encryptFrame(key, plaintext)
}

// DecryptOperation reverses EncryptOperation, rejecting any version != 1
// and any frame shorter than the minimum length.
func DecryptOperation(key, frame []byte) (operation.EncodableFields, error) {
	var out operation.EncodableFields
	plaintext, err := decryptFrame(key, frame)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(plaintext, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedFraming, err)
	}
	return out, nil
}

func encryptFrame(key, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	frame := make([]byte, 0, minFrameLen+len(plaintext))
	frame = append(frame, FrameVersion)
	frame = append(frame, nonce...)
	frame = append(frame, ciphertext...)
	return frame, nil
}

func decryptFrame(key, frame []byte) ([]byte, error) {
	if len(frame) < minFrameLen {
		return nil, ErrMalformedFraming
	}
	if frame[0] != FrameVersion {
		return nil, ErrUnsupportedVersion
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := frame[1 : 1+nonceSize]
	ciphertext := frame[1+nonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: init gcm: %w", err)
	}
	return aead, nil
}

// BatchPayload is the structured result of encrypting a batch:
// {version, nonce, ciphertext} without the leading version byte.
type BatchPayload struct {
	Version    int    `json:"version"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// EncryptBatch encrypts the JSON document {operations, timestamp,
// userId} for a set of operations.
func EncryptBatch(key []byte, ops []*operation.Operation, timestamp int64, userID string) (*BatchPayload, error) {
	encodable := make([]operation.EncodableFields, len(ops))
	for i, op := range ops {
		encodable[i] = op.Encodable()
	}
	envelope := operation.BatchEnvelope{Operations: encodable, Timestamp: timestamp, UserID: userID}

	plaintext, err := operation.MarshalCanonical(envelope)
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal batch: %w", err)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generate nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	return &BatchPayload{Version: FrameVersion, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// DecryptBatch reverses EncryptBatch.
func DecryptBatch(key []byte, payload *BatchPayload) (operation.BatchEnvelope, error) {
	var out operation.BatchEnvelope
	if payload.Version != FrameVersion {
		return out, ErrUnsupportedVersion
	}
	if len(payload.Nonce) != nonceSize {
		return out, ErrMalformedFraming
	}

	aead, err := newAEAD(key)
	if err != nil {
		return out, err
	}
	plaintext, err := aead.Open(nil, payload.Nonce, payload.Ciphertext, nil)
	if err != nil {
		return out, ErrAuthenticationFailed
	}
	if err := json.Unmarshal(plaintext, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedFraming, err)
	}
	return out, nil
}
