// Package conflictstore provides durable retention of unresolved
// conflicts across process restarts, backing pkg/conflict's in-memory
// unresolved cache with a sqlite (default) or postgres table.
package conflictstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aeonsync/core/pkg/operation"
)

// ErrNotFound is returned when a conflict id has no stored record.
var ErrNotFound = errors.New("conflictstore: conflict not found")

// Store persists conflict records via GORM against a sqlite or
// postgres backend, selected by Config.Driver.
type Store struct {
	db *gorm.DB
}

// New opens (and migrates) the conflict store described by cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("conflictstore: create db directory: %w", err)
			}
		}
		dsn := cfg.DSN + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("conflictstore: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("conflictstore: open database: %w", err)
	}

	switch cfg.Driver {
	case DriverSQLite:
		// Sqlite has no concurrent-writer story worth a migration
		// table; AutoMigrate is idempotent and sufficient for a
		// single-node embedded database.
		if err := db.AutoMigrate(&conflictRecord{}); err != nil {
			return nil, fmt.Errorf("conflictstore: automigrate: %w", err)
		}
	case DriverPostgres:
		if err := runPostgresMigrations(ctx, cfg.DSN); err != nil {
			return nil, fmt.Errorf("conflictstore: migrate: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// DB returns the underlying GORM handle, for advanced queries or tests.
func (s *Store) DB() *gorm.DB { return s.db }

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts or updates a conflict record (resolved or not).
func (s *Store) Save(ctx context.Context, c *operation.Conflict) error {
	rec, err := toRecord(c)
	if err != nil {
		return fmt.Errorf("conflictstore: encode: %w", err)
	}
	return s.db.WithContext(ctx).Save(rec).Error
}

// Get returns a single conflict by id.
func (s *Store) Get(ctx context.Context, id string) (*operation.Conflict, error) {
	var rec conflictRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromRecord(&rec)
}

// ListUnresolved returns every conflict without a resolution, oldest
// first.
func (s *Store) ListUnresolved(ctx context.Context) ([]*operation.Conflict, error) {
	var recs []conflictRecord
	if err := s.db.WithContext(ctx).
		Where("resolution_strategy = ? OR resolution_strategy IS NULL", "").
		Order("detected_at asc").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*operation.Conflict, 0, len(recs))
	for i := range recs {
		c, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Delete removes a conflict record.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&conflictRecord{}, "id = ?", id).Error
}
