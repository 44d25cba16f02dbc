package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Keep log statements on these keys consistently for aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Operation & Batch (C2, C3)
	// ========================================================================
	KeyOperationID = "operation_id" // Operation record identifier
	KeyOpType      = "op_type"      // Operation type: create, update, delete, session_update, tree_update, data_update, presence_update
	KeyEntityType  = "entity_type"  // Entity the operation targets
	KeyEntityID    = "entity_id"    // Entity identifier
	KeyPriority    = "priority"     // Operation priority: high, normal, low
	KeyStatus      = "status"       // Operation/batch status
	KeyBatchID     = "batch_id"     // Sync batch identifier
	KeyQueueDepth  = "queue_depth"  // Current queue depth (operation count)
	KeyQueueBytes  = "queue_bytes"  // Current queue size in bytes

	// ========================================================================
	// Conflicts (C4)
	// ========================================================================
	KeyConflictID   = "conflict_id"   // Conflict record identifier
	KeyConflictType = "conflict_type" // delete_update, update_delete, update_update, concurrent
	KeySeverity     = "severity"      // low, medium, high
	KeyStrategy     = "strategy"      // Resolution strategy applied
	KeySimilarity   = "similarity"    // Computed similarity score (0-100)

	// ========================================================================
	// Sync Coordinator (C5)
	// ========================================================================
	KeyNetworkState = "network_state" // unknown, online, poor, offline
	KeySpeedKbps    = "speed_kbps"    // Estimated bandwidth in kbps
	KeyRTTMs        = "rtt_ms"        // Estimated round-trip time in milliseconds
	KeyAttempt      = "attempt"       // Retry attempt number
	KeyMaxRetries   = "max_retries"   // Maximum retry attempts

	// ========================================================================
	// Crypto (C1)
	// ========================================================================
	KeyKeyContext    = "key_context"        // Key derivation context label
	KeyEncryptionVer = "encryption_version" // Framing version byte

	// ========================================================================
	// Session / Client Identification
	// ========================================================================
	KeySessionID = "session_id" // Sync session identifier
	KeyUserID    = "user_id"    // Authenticated user identifier
	KeyClientIP  = "client_ip"  // Admin API caller IP

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric/sentinel error code
	KeySource     = "source"      // Component/subsystem emitting the log line

	// ========================================================================
	// Storage Backend
	// ========================================================================
	KeyStoreName = "store_name" // Configured storage adapter name
	KeyStoreType = "store_type" // Adapter type: memory, local, badger, s3
	KeyBucket    = "bucket"     // Cloud bucket name (S3)
	KeyKey       = "key"        // Object key in storage
	KeyRegion    = "region"     // Cloud region

	// ========================================================================
	// Event Bus
	// ========================================================================
	KeyTopic = "topic" // Event bus topic name
)

// ----------------------------------------------------------------------------
// Field constructors for type safety
// ----------------------------------------------------------------------------

func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }
func SpanID(id string) slog.Attr  { return slog.String(KeySpanID, id) }

func OperationID(id string) slog.Attr { return slog.String(KeyOperationID, id) }
func OpType(t string) slog.Attr       { return slog.String(KeyOpType, t) }
func EntityType(t string) slog.Attr   { return slog.String(KeyEntityType, t) }
func EntityID(id string) slog.Attr    { return slog.String(KeyEntityID, id) }
func Priority(p string) slog.Attr     { return slog.String(KeyPriority, p) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func BatchID(id string) slog.Attr     { return slog.String(KeyBatchID, id) }
func QueueDepth(n int) slog.Attr      { return slog.Int(KeyQueueDepth, n) }
func QueueBytes(n int64) slog.Attr    { return slog.Int64(KeyQueueBytes, n) }

func ConflictID(id string) slog.Attr  { return slog.String(KeyConflictID, id) }
func ConflictType(t string) slog.Attr { return slog.String(KeyConflictType, t) }
func Severity(s string) slog.Attr     { return slog.String(KeySeverity, s) }
func Strategy(s string) slog.Attr     { return slog.String(KeyStrategy, s) }
func Similarity(score int) slog.Attr  { return slog.Int(KeySimilarity, score) }

func NetworkState(s string) slog.Attr { return slog.String(KeyNetworkState, s) }
func SpeedKbps(v float64) slog.Attr   { return slog.Float64(KeySpeedKbps, v) }
func RTTMs(v float64) slog.Attr       { return slog.Float64(KeyRTTMs, v) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func MaxRetries(n int) slog.Attr      { return slog.Int(KeyMaxRetries, n) }

func KeyContext(ctx string) slog.Attr { return slog.String(KeyKeyContext, ctx) }
func EncryptionVer(v int) slog.Attr   { return slog.Int(KeyEncryptionVer, v) }

func SessionID(id string) slog.Attr  { return slog.String(KeySessionID, id) }
func UserID(id string) slog.Attr     { return slog.String(KeyUserID, id) }
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }
func Source(src string) slog.Attr     { return slog.String(KeySource, src) }

func StoreName(name string) slog.Attr { return slog.String(KeyStoreName, name) }
func StoreType(t string) slog.Attr    { return slog.String(KeyStoreType, t) }
func Bucket(name string) slog.Attr    { return slog.String(KeyBucket, name) }
func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func Region(r string) slog.Attr       { return slog.String(KeyRegion, r) }

func Topic(t string) slog.Attr { return slog.String(KeyTopic, t) }
