package sync

// Config is the sync coordinator's recognized configuration surface.
type Config struct {
	AdaptiveBatching     bool
	DefaultMaxBatchSize  int // operations per batch, default 100
	DefaultMaxBatchBytes int // bytes per batch, default 5 MiB
	MaxRetries           int // default 5
	BaseRetryDelayMs     int64
	BatchTimeoutMs       int64 // transport-level deadline per batch send

	// EnableCompression is carried from configuration, but neither the
	// coordinator nor the cmd/aeonsyncd driver reads it: batches are
	// handed to the transport uncompressed. The package-level
	// Compress/Decompress helpers are not applied anywhere.
	EnableCompression bool
	// EnableDeltaSync is recognized but this implementation always
	// sends full operation payloads; no delta codec exists in this
	// module (see DESIGN.md).
	EnableDeltaSync bool
}

const (
	defaultMaxBatchSize  = 100
	defaultMaxBatchBytes = 5 * 1024 * 1024
	defaultMaxRetries    = 5
	defaultBaseRetryMs   = 1000
)

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		AdaptiveBatching:     true,
		DefaultMaxBatchSize:  defaultMaxBatchSize,
		DefaultMaxBatchBytes: defaultMaxBatchBytes,
		MaxRetries:           defaultMaxRetries,
		BaseRetryDelayMs:     defaultBaseRetryMs,
	}
}

func (c Config) withDefaults() Config {
	if c.DefaultMaxBatchSize <= 0 {
		c.DefaultMaxBatchSize = defaultMaxBatchSize
	}
	if c.DefaultMaxBatchBytes <= 0 {
		c.DefaultMaxBatchBytes = defaultMaxBatchBytes
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.BaseRetryDelayMs <= 0 {
		c.BaseRetryDelayMs = defaultBaseRetryMs
	}
	return c
}
