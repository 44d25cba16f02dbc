package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeonsync/core/internal/bytesize"
)

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "session", cfg.Queue.KeyDerivation)
	assert.Equal(t, float64(70), cfg.Resolver.MergeThreshold)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Storage.Backend = "local"
	cfg.Storage.LocalPath = filepath.Join(dir, "queue.dat")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local", loaded.Storage.Backend)
	assert.Equal(t, cfg.Storage.LocalPath, loaded.Storage.LocalPath)
}

func TestLoadParsesHumanReadableByteSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue:\n  max_local_capacity_bytes: \"100MB\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, bytesize.ByteSize(100*1000*1000), cfg.Queue.MaxLocalCapacityBytes)
}

func TestQueueConfigConversion(t *testing.T) {
	cfg := GetDefaultConfig()
	qc := cfg.Queue.ToQueueConfig()
	assert.Equal(t, int(cfg.Queue.MaxLocalCapacityBytes), qc.MaxLocalCapacity)
}
