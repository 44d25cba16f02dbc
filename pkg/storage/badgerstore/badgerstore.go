// Package badgerstore is an embedded, local-disk storage.Adapter backed
// by dgraph-io/badger, requiring no external service.
package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/aeonsync/core/pkg/storage"
)

const keyPrefix = "op:"

type record struct {
	EncryptedData []byte         `json:"encryptedData"`
	Metadata      map[string]any `json:"metadata"`
}

// Store wraps a Badger database as a storage.Adapter.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a Badger database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Snapshot(_ context.Context, records []storage.Record) error {
	return s.db.Update(func(txn *badger.Txn) error {
		// Drop existing op: keys so Snapshot fully replaces state, matching
		// the Adapter contract (snapshot is authoritative).
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		var stale [][]byte
		for it.Seek([]byte(keyPrefix)); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			k := it.Item().KeyCopy(nil)
			stale = append(stale, k)
		}
		it.Close()
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}

		for _, r := range records {
			rec := record{EncryptedData: r.EncryptedData, Metadata: r.Metadata}
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("badgerstore: marshal %s: %w", r.ID, err)
			}
			if err := txn.Set([]byte(keyPrefix+r.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Restore(_ context.Context) ([]storage.Record, error) {
	var out []storage.Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(keyPrefix)); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			item := it.Item()
			id := string(item.Key())[len(keyPrefix):]
			var rec record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("badgerstore: unmarshal %s: %w", id, err)
			}
			out = append(out, storage.Record{ID: id, EncryptedData: rec.EncryptedData, Metadata: rec.Metadata})
		}
		return nil
	})
	return out, err
}

func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(keyPrefix + id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
