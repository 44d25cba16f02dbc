package operation

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// idMu, idLastMs and idLastSeq guard monotonicity of the timestamp
// component within a single process; two ids generated in the same millisecond still differ by
// their random suffix, but bumping the sequence avoids relying on that
// alone when a caller generates ids in a tight loop.
var (
	idMu       sync.Mutex
	idLastMs   int64
	idLastSeq  int64
)

// GenerateID produces an id of the form op_<base36-timestamp>_<base36-random>.
// Monotonicity is only guaranteed within this process.
func GenerateID() string {
	idMu.Lock()
	ms := time.Now().UnixMilli()
	if ms <= idLastMs+idLastSeq {
		ms = idLastMs
		idLastSeq++
	} else {
		idLastMs = ms
		idLastSeq = 0
	}
	seq := idLastSeq
	idMu.Unlock()

	ts := ms
	if seq > 0 {
		ts += seq // nudge the timestamp component forward so ids stay ordered
	}

	var randBuf [8]byte
	if _, err := rand.Read(randBuf[:]); err != nil {
		// crypto/rand failing is unrecoverable on any supported platform;
		// fall back to a time-derived suffix rather than panicking.
		binary.BigEndian.PutUint64(randBuf[:], uint64(time.Now().UnixNano()))
	}
	randVal := binary.BigEndian.Uint64(randBuf[:])

	return fmt.Sprintf("op_%s_%s", strconv.FormatInt(ts, 36), strconv.FormatUint(randVal, 36))
}

// GenerateBatchID produces an opaque unique batch identifier: a random
// UUID, unlike the timestamp-ordered operation id format.
func GenerateBatchID() string {
	return "batch_" + uuid.NewString()
}

// GenerateConflictID produces an opaque unique conflict identifier.
func GenerateConflictID() string {
	return "conflict_" + uuid.NewString()
}
