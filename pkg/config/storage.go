package config

import (
	"context"
	"fmt"

	"github.com/aeonsync/core/pkg/storage"
	"github.com/aeonsync/core/pkg/storage/badgerstore"
	"github.com/aeonsync/core/pkg/storage/localstore"
	"github.com/aeonsync/core/pkg/storage/memstore"
	"github.com/aeonsync/core/pkg/storage/s3store"
)

// CreateStorageAdapter builds the storage.Adapter selected by
// cfg.Storage.Backend. The queue treats storage as an external
// collaborator and never imports a concrete backend directly; this
// factory is the one place that does.
func CreateStorageAdapter(ctx context.Context, cfg *Config) (storage.Adapter, error) {
	switch cfg.Storage.Backend {
	case "memory", "":
		return memstore.New(), nil
	case "local":
		return localstore.New(cfg.Storage.LocalPath)
	case "badger":
		return badgerstore.Open(cfg.Storage.BadgerDir)
	case "s3":
		return s3store.New(ctx, cfg.Storage.S3Bucket, cfg.Storage.S3Prefix, cfg.Storage.S3Region)
	default:
		return nil, fmt.Errorf("config: unsupported storage backend %q", cfg.Storage.Backend)
	}
}
