package queue

import "time"

// KeyDerivationMode selects which crypto.KeyCache derivation path the
// queue uses to encrypt operations.
type KeyDerivationMode string

const (
	KeyDerivationUCAN    KeyDerivationMode = "ucan"
	KeyDerivationSession KeyDerivationMode = "session"
)

// Config is the queue's recognized configuration surface.
type Config struct {
	MaxLocalCapacity    int           // byte ceiling, default 50 MiB
	CompactionThreshold float64       // trigger ratio, default 0.8
	D1SyncInterval      time.Duration // snapshot cadence, default 5 minutes
	SyncedCleanupAge    time.Duration // discard age, default 1 hour

	EncryptionEnabled bool
	KeyDerivation     KeyDerivationMode
	// EncryptionContext is the HKDF info-string context label, e.g.
	// "aeon-offline-operation:<context>".
	EncryptionContext string
	// UserID and SigningKey are used only when KeyDerivation is
	// KeyDerivationUCAN; session mode derives per-operation from the
	// operation's own SessionID instead.
	UserID     string
	SigningKey []byte
}

const (
	defaultMaxLocalCapacity    = 50 * 1024 * 1024
	defaultCompactionThreshold = 0.8
	defaultD1SyncInterval      = 5 * time.Minute
	defaultSyncedCleanupAge    = time.Hour
)

// DefaultConfig returns the queue's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxLocalCapacity:    defaultMaxLocalCapacity,
		CompactionThreshold: defaultCompactionThreshold,
		D1SyncInterval:      defaultD1SyncInterval,
		SyncedCleanupAge:    defaultSyncedCleanupAge,
		EncryptionEnabled:   true,
		KeyDerivation:       KeyDerivationSession,
		EncryptionContext:   "queue",
	}
}

func (c Config) withDefaults() Config {
	if c.MaxLocalCapacity <= 0 {
		c.MaxLocalCapacity = defaultMaxLocalCapacity
	}
	if c.CompactionThreshold <= 0 {
		c.CompactionThreshold = defaultCompactionThreshold
	}
	if c.D1SyncInterval <= 0 {
		c.D1SyncInterval = defaultD1SyncInterval
	}
	if c.SyncedCleanupAge <= 0 {
		c.SyncedCleanupAge = defaultSyncedCleanupAge
	}
	if c.EncryptionContext == "" {
		c.EncryptionContext = "queue"
	}
	if c.KeyDerivation == "" {
		c.KeyDerivation = KeyDerivationSession
	}
	return c
}
