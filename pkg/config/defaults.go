package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills in zero-valued fields with the documented
// defaults for each component, after file/env decoding.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyQueueDefaults(&cfg.Queue)
	applyResolverDefaults(&cfg.Resolver)
	applyCoordinatorDefaults(&cfg.Coordinator)
	applyStorageDefaults(&cfg.Storage)
	applyAdminAPIDefaults(&cfg.AdminAPI)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Enabled && cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if cfg.Profiling.Enabled && len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_objects", "inuse_objects"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9464
	}
}

func applyQueueDefaults(cfg *QueueConfig) {
	if cfg.MaxLocalCapacityBytes == 0 {
		cfg.MaxLocalCapacityBytes = 50 * 1024 * 1024
	}
	if cfg.CompactionThreshold == 0 {
		cfg.CompactionThreshold = 0.8
	}
	if cfg.D1SyncInterval == 0 {
		cfg.D1SyncInterval = 5 * time.Minute
	}
	if cfg.SyncedCleanupAge == 0 {
		cfg.SyncedCleanupAge = time.Hour
	}
	if cfg.KeyDerivation == "" {
		cfg.KeyDerivation = "session"
	}
	if cfg.EncryptionContext == "" {
		cfg.EncryptionContext = "queue"
	}
}

func applyResolverDefaults(cfg *ResolverConfig) {
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = "last-modified"
	}
	if cfg.MergeThreshold == 0 {
		cfg.MergeThreshold = 70
	}
	if cfg.MaxConflictCacheSize == 0 {
		cfg.MaxConflictCacheSize = 1000
	}
	if cfg.ConflictTimeoutMs == 0 {
		cfg.ConflictTimeoutMs = 30 * 60 * 1000
	}
}

func applyCoordinatorDefaults(cfg *CoordinatorConfig) {
	if cfg.DefaultMaxBatchSize == 0 {
		cfg.DefaultMaxBatchSize = 100
	}
	if cfg.DefaultMaxBatchBytes == 0 {
		cfg.DefaultMaxBatchBytes = 5 * 1024 * 1024
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if cfg.BaseRetryDelayMs == 0 {
		cfg.BaseRetryDelayMs = 1000
	}
	if cfg.BatchTimeoutMs == 0 {
		cfg.BatchTimeoutMs = 30_000
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "memory"
	}
	if cfg.Backend == "local" && cfg.LocalPath == "" {
		cfg.LocalPath = "/tmp/aeonsync-queue.dat"
	}
	if cfg.Conflicts.Driver == "" {
		cfg.Conflicts.Driver = "sqlite"
	}
	if cfg.Conflicts.DSN == "" {
		cfg.Conflicts.DSN = "/tmp/aeonsync-conflicts.db"
	}
}

func applyAdminAPIDefaults(cfg *AdminAPIConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 8090
	}
}

// GetDefaultConfig returns a Config with all defaults applied, used
// when no config file is present.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
