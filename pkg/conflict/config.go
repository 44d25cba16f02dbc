package conflict

import "github.com/aeonsync/core/pkg/operation"

// Config is the resolver's recognized configuration surface (spec §6).
type Config struct {
	// DefaultStrategy is applied to every conflict the auto-resolution
	// gate admits, unless the strategy itself is inapplicable to the
	// conflict's type (merge only applies to update_update) or is
	// manual (which never auto-resolves; see Evaluate).
	DefaultStrategy operation.Strategy

	MergeThreshold       float64 // similarity above which update_update auto-merges, default 70
	EnableAutoMerge      bool    // gates the merge strategy for update_update

	// EnableLocalWins gates whether a conflict whose DefaultStrategy
	// can't apply (merge selected for a non-update_update type, or an
	// unrecognized strategy value) silently falls back to local-wins.
	// When false, such conflicts are retained unresolved instead of
	// being resolved under a fallback the operator didn't choose.
	EnableLocalWins bool

	MaxConflictCacheSize int   // bounded unresolved retention, default 1000
	ConflictTimeoutMs    int64 // age after which a retained conflict is reported as timed out, default 30 minutes
}

const (
	defaultMergeThreshold       = 70
	defaultMaxConflictCacheSize = 1000
	defaultConflictTimeoutMs    = 30 * 60 * 1000
)

// DefaultConfig mirrors the documented defaults. DefaultStrategy is
// last-modified, matching spec §8 scenario 4's "default strategy
// `last-modified`".
func DefaultConfig() Config {
	return Config{
		DefaultStrategy:      operation.StrategyLastModified,
		MergeThreshold:       defaultMergeThreshold,
		EnableAutoMerge:      true,
		EnableLocalWins:      true,
		MaxConflictCacheSize: defaultMaxConflictCacheSize,
		ConflictTimeoutMs:    defaultConflictTimeoutMs,
	}
}

func (c Config) withDefaults() Config {
	if c.DefaultStrategy == "" {
		c.DefaultStrategy = operation.StrategyLastModified
	}
	if c.MergeThreshold <= 0 {
		c.MergeThreshold = defaultMergeThreshold
	}
	if c.MaxConflictCacheSize <= 0 {
		c.MaxConflictCacheSize = defaultMaxConflictCacheSize
	}
	if c.ConflictTimeoutMs <= 0 {
		c.ConflictTimeoutMs = defaultConflictTimeoutMs
	}
	return c
}
