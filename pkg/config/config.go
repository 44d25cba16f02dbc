// Package config loads aeonsyncd's configuration from file, environment,
// and defaults using a viper+mapstructure+validator layering adapted to
// this module's components.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aeonsync/core/internal/bytesize"
	"github.com/aeonsync/core/pkg/conflict"
	"github.com/aeonsync/core/pkg/operation"
	"github.com/aeonsync/core/pkg/queue"
	"github.com/aeonsync/core/pkg/sync"
)

// Config is aeonsyncd's full configuration surface.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (AEONSYNC_*), for keys the file sets
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// When no configuration file is found, Load returns the defaults without
// reading the environment. No CLI flag overrides an individual setting.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	Queue       QueueConfig       `mapstructure:"queue" yaml:"queue"`
	Resolver    ResolverConfig    `mapstructure:"resolver" yaml:"resolver"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator" yaml:"coordinator"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	AdminAPI    AdminAPIConfig    `mapstructure:"admin_api" yaml:"admin_api"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled    bool            `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string          `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool            `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64         `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls optional Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP surface.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// QueueConfig mirrors pkg/queue.Config with mapstructure/yaml tags.
type QueueConfig struct {
	// MaxLocalCapacityBytes accepts human-readable byte sizes in the
	// config file ("50MB", "512Mi") in addition to plain integers.
	MaxLocalCapacityBytes bytesize.ByteSize `mapstructure:"max_local_capacity_bytes" yaml:"max_local_capacity_bytes"`
	CompactionThreshold   float64           `mapstructure:"compaction_threshold" validate:"omitempty,gt=0,lte=1" yaml:"compaction_threshold"`
	D1SyncInterval        time.Duration `mapstructure:"d1_sync_interval" yaml:"d1_sync_interval"`
	SyncedCleanupAge      time.Duration `mapstructure:"synced_cleanup_age" yaml:"synced_cleanup_age"`
	EncryptionEnabled     bool          `mapstructure:"encryption_enabled" yaml:"encryption_enabled"`
	KeyDerivation         string        `mapstructure:"key_derivation" validate:"omitempty,oneof=ucan session" yaml:"key_derivation"`
	EncryptionContext     string        `mapstructure:"encryption_context" yaml:"encryption_context"`
}

// ToQueueConfig converts the decoded config into pkg/queue.Config.
func (c QueueConfig) ToQueueConfig() queue.Config {
	return queue.Config{
		MaxLocalCapacity:    int(c.MaxLocalCapacityBytes),
		CompactionThreshold: c.CompactionThreshold,
		D1SyncInterval:      c.D1SyncInterval,
		SyncedCleanupAge:    c.SyncedCleanupAge,
		EncryptionEnabled:   c.EncryptionEnabled,
		KeyDerivation:       queue.KeyDerivationMode(c.KeyDerivation),
		EncryptionContext:   c.EncryptionContext,
	}
}

// ResolverConfig mirrors pkg/conflict.Config.
type ResolverConfig struct {
	DefaultStrategy      string  `mapstructure:"default_strategy" validate:"omitempty,oneof=local-wins remote-wins last-modified merge manual" yaml:"default_strategy"`
	MergeThreshold       float64 `mapstructure:"merge_threshold" validate:"omitempty,gte=0,lte=100" yaml:"merge_threshold"`
	EnableAutoMerge      bool    `mapstructure:"enable_auto_merge" yaml:"enable_auto_merge"`
	EnableLocalWins      bool    `mapstructure:"enable_local_wins" yaml:"enable_local_wins"`
	MaxConflictCacheSize int     `mapstructure:"max_conflict_cache_size" yaml:"max_conflict_cache_size"`
	ConflictTimeoutMs    int64   `mapstructure:"conflict_timeout_ms" yaml:"conflict_timeout_ms"`
}

// ToResolverConfig converts the decoded config into pkg/conflict.Config.
func (c ResolverConfig) ToResolverConfig() conflict.Config {
	cfg := conflict.DefaultConfig()
	if c.DefaultStrategy != "" {
		cfg.DefaultStrategy = operation.Strategy(c.DefaultStrategy)
	}
	if c.MergeThreshold > 0 {
		cfg.MergeThreshold = c.MergeThreshold
	}
	cfg.EnableAutoMerge = c.EnableAutoMerge
	cfg.EnableLocalWins = c.EnableLocalWins
	if c.MaxConflictCacheSize > 0 {
		cfg.MaxConflictCacheSize = c.MaxConflictCacheSize
	}
	if c.ConflictTimeoutMs > 0 {
		cfg.ConflictTimeoutMs = c.ConflictTimeoutMs
	}
	return cfg
}

// CoordinatorConfig mirrors pkg/sync.Config.
type CoordinatorConfig struct {
	AdaptiveBatching     bool  `mapstructure:"adaptive_batching" yaml:"adaptive_batching"`
	DefaultMaxBatchSize  int   `mapstructure:"default_max_batch_size" yaml:"default_max_batch_size"`
	DefaultMaxBatchBytes int   `mapstructure:"default_max_batch_bytes" yaml:"default_max_batch_bytes"`
	BatchTimeoutMs       int64 `mapstructure:"batch_timeout_ms" yaml:"batch_timeout_ms"`
	MaxRetries           int   `mapstructure:"max_retries" yaml:"max_retries"`
	BaseRetryDelayMs     int64 `mapstructure:"base_retry_delay_ms" yaml:"base_retry_delay_ms"`
	EnableCompression    bool  `mapstructure:"enable_compression" yaml:"enable_compression"`
	EnableDeltaSync      bool  `mapstructure:"enable_delta_sync" yaml:"enable_delta_sync"`
}

// ToSyncConfig converts the decoded config into pkg/sync.Config.
func (c CoordinatorConfig) ToSyncConfig() sync.Config {
	return sync.Config{
		AdaptiveBatching:     c.AdaptiveBatching,
		DefaultMaxBatchSize:  c.DefaultMaxBatchSize,
		DefaultMaxBatchBytes: c.DefaultMaxBatchBytes,
		BatchTimeoutMs:       c.BatchTimeoutMs,
		MaxRetries:           c.MaxRetries,
		BaseRetryDelayMs:     c.BaseRetryDelayMs,
		EnableCompression:    c.EnableCompression,
		EnableDeltaSync:      c.EnableDeltaSync,
	}
}

// StorageConfig selects and configures the durable storage.Adapter.
type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory local badger s3" yaml:"backend"`

	LocalPath string `mapstructure:"local_path" yaml:"local_path,omitempty"`
	BadgerDir string `mapstructure:"badger_dir" yaml:"badger_dir,omitempty"`

	S3Bucket string `mapstructure:"s3_bucket" yaml:"s3_bucket,omitempty"`
	S3Prefix string `mapstructure:"s3_prefix" yaml:"s3_prefix,omitempty"`
	S3Region string `mapstructure:"s3_region" yaml:"s3_region,omitempty"`

	// Conflicts configures pkg/conflictstore's durable retention database.
	Conflicts ConflictStoreConfig `mapstructure:"conflicts" yaml:"conflicts"`
}

// ConflictStoreConfig configures the gorm-backed unresolved-conflict store.
type ConflictStoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres" yaml:"driver"`
	DSN    string `mapstructure:"dsn" validate:"required" yaml:"dsn"`
}

// AdminAPIConfig configures the chi-based read/write admin HTTP surface.
type AdminAPIConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Port      int    `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration, failing with user-facing guidance when
// no config is present at the default location.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Create a YAML configuration file there first:\n"+
				"  %s\n",
				GetDefaultConfigPath(), GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate runs struct-tag validation over the decoded config.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("AEONSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(durationDecodeHook(), byteSizeDecodeHook())
}

// byteSizeDecodeHook lets byte-size fields (bytesize.ByteSize) accept
// human-readable strings ("50MB", "512Mi") as well as plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aeonsync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "aeonsync")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
