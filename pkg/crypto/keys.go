package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"
)

// Salts are fixed per derivation source. These are wire constants, not
// branding, and must not be renamed.
const (
	saltUCAN    = "aeon-pages-v1"
	saltSession = "aeon-pages-session-v1"
)

const keySize = 32 // 256-bit AES-GCM key

// Source identifies which secret a key was derived from.
type Source int

const (
	// SourceUCAN derives from a UCAN-style signing key byte string,
	// cached under (userId, context).
	SourceUCAN Source = iota
	// SourceSession derives from a session identifier used as fallback,
	// cached under session:<sessionId>:<context>.
	SourceSession
)

// cacheKey is the composite key used to memoize derived keys, keyed by
// (derivation-source, userId, context).
type cacheKey struct {
	source Source
	id     string // userId for SourceUCAN, sessionId for SourceSession
	context string
}

func (k cacheKey) String() string {
	switch k.source {
	case SourceSession:
		return fmt.Sprintf("session:%s:%s", k.id, k.context)
	default:
		return fmt.Sprintf("ucan:%s:%s", k.id, k.context)
	}
}

// KeyCache derives and memoizes AES-256-GCM keys via HKDF-SHA256. It is
// safe for concurrent use, since Go's preemptive scheduler can run
// concurrent callers even for state that's conceptually single-owner.
type KeyCache struct {
	mu   sync.RWMutex
	keys map[cacheKey][]byte
}

// NewKeyCache constructs an empty key cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{keys: make(map[cacheKey][]byte)}
}

// DeriveFromUCAN derives (or returns the cached) key for a UCAN-style
// signing key byte string, scoped to userId and context.
func (c *KeyCache) DeriveFromUCAN(signingKey []byte, userID, context string) ([]byte, error) {
	return c.derive(SourceUCAN, signingKey, userID, context, saltUCAN, "aeon-offline-operation:"+context)
}

// DeriveFromSession derives (or returns the cached) key for a session
// identifier used as key material, scoped to sessionId and context.
func (c *KeyCache) DeriveFromSession(sessionID, context string) ([]byte, error) {
	return c.derive(SourceSession, []byte(sessionID), sessionID, context, saltSession, "aeon-session-operation:"+context)
}

func (c *KeyCache) derive(source Source, secret []byte, id, context, salt, info string) ([]byte, error) {
	ck := cacheKey{source: source, id: id, context: context}

	c.mu.RLock()
	if key, ok := c.keys[ck]; ok {
		c.mu.RUnlock()
		return key, nil
	}
	c.mu.RUnlock()

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, secret, []byte(salt), []byte(info))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}

	c.mu.Lock()
	c.keys[ck] = key
	c.mu.Unlock()

	return key, nil
}

// RemoveUCAN evicts the cached key for a (userId, context) pair, e.g. on
// logout.
func (c *KeyCache) RemoveUCAN(userID, context string) {
	c.mu.Lock()
	delete(c.keys, cacheKey{source: SourceUCAN, id: userID, context: context})
	c.mu.Unlock()
}

// RemoveSession evicts the cached key for a (sessionId, context) pair.
func (c *KeyCache) RemoveSession(sessionID, context string) {
	c.mu.Lock()
	delete(c.keys, cacheKey{source: SourceSession, id: sessionID, context: context})
	c.mu.Unlock()
}

// Clear removes every cached key, e.g. on full logout.
func (c *KeyCache) Clear() {
	c.mu.Lock()
	c.keys = make(map[cacheKey][]byte)
	c.mu.Unlock()
}

// Len reports the number of cached keys, mainly for tests and metrics.
func (c *KeyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}
