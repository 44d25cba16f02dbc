// Package localstore is a single-file storage.Adapter that survives a
// process restart without a network round trip. The file holds a fixed
// header followed by a sequence of length-prefixed records; each
// Snapshot rewrites the whole file (through a temporary file and a
// rename) and Restore reads it through a read-only memory mapping.
package localstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/aeonsync/core/pkg/storage"
)

func marshalMeta(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}

func unmarshalMeta(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

const (
	magic         = "AESQ" // AeonSync Queue
	formatVersion = uint16(1)
	headerSize    = 16 // magic(4) + version(2) + reserved(2) + entryCount(4) + reserved(4)
)

// Store is a mmap-backed storage.Adapter. Snapshot rewrites the whole
// file; Restore reads it back via a read-only mapping.
type Store struct {
	mu   sync.Mutex
	path string
}

// New opens (creating if absent) the backing file at path.
func New(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("localstore: create %s: %w", path, err)
		}
		if err := writeEmpty(f); err != nil {
			f.Close()
			return nil, err
		}
		f.Close()
	}
	return &Store{path: path}, nil
}

func writeEmpty(f *os.File) error {
	hdr := make([]byte, headerSize)
	copy(hdr[0:4], magic)
	binary.LittleEndian.PutUint16(hdr[4:6], formatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], 0)
	_, err := f.Write(hdr)
	return err
}

func (s *Store) Snapshot(_ context.Context, records []storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, headerSize)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:6], formatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(records)))

	for _, r := range records {
		metaJSON, err := marshalMeta(r.Metadata)
		if err != nil {
			return fmt.Errorf("localstore: marshal metadata for %s: %w", r.ID, err)
		}
		buf = appendLP(buf, []byte(r.ID))
		buf = appendLP(buf, r.EncryptedData)
		buf = appendLP(buf, metaJSON)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("localstore: open tmp: %w", err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("localstore: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("localstore: close tmp: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Restore(_ context.Context) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("localstore: open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("localstore: stat: %w", err)
	}
	if info.Size() < headerSize {
		return nil, fmt.Errorf("localstore: file too small")
	}
	if info.Size() == headerSize {
		return nil, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("localstore: mmap: %w", err)
	}
	defer unix.Munmap(data)

	if string(data[0:4]) != magic {
		return nil, fmt.Errorf("localstore: bad magic")
	}
	count := binary.LittleEndian.Uint32(data[8:12])

	records := make([]storage.Record, 0, count)
	off := headerSize
	for i := uint32(0); i < count; i++ {
		id, next, err := readLP(data, off)
		if err != nil {
			return nil, err
		}
		off = next
		enc, next, err := readLP(data, off)
		if err != nil {
			return nil, err
		}
		off = next
		metaJSON, next, err := readLP(data, off)
		if err != nil {
			return nil, err
		}
		off = next

		meta, err := unmarshalMeta(metaJSON)
		if err != nil {
			return nil, fmt.Errorf("localstore: unmarshal metadata: %w", err)
		}

		encCopy := make([]byte, len(enc))
		copy(encCopy, enc)

		records = append(records, storage.Record{ID: string(id), EncryptedData: encCopy, Metadata: meta})
	}
	return records, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Delete does not touch the file: removing one record would need a
	// full rewrite, so the record stays on disk until the next Snapshot
	// writes a record set without it. The queue does not call Snapshot
	// after Delete; only its periodic flush does.
	_ = id
	return nil
}

func (s *Store) Close() error { return nil }

func appendLP(buf, data []byte) []byte {
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(data)))
	buf = append(buf, lenBuf...)
	return append(buf, data...)
}

func readLP(data []byte, off int) (field []byte, next int, err error) {
	if off+4 > len(data) {
		return nil, 0, fmt.Errorf("localstore: truncated length prefix at offset %d", off)
	}
	n := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if off+n > len(data) {
		return nil, 0, fmt.Errorf("localstore: truncated field at offset %d", off)
	}
	return data[off : off+n], off + n, nil
}
