package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for operation-queue and sync-coordinator spans.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Operation attributes
	// ========================================================================
	AttrOperationID   = "aeonsync.operation.id"
	AttrOperationType = "aeonsync.operation.type"
	AttrSessionID     = "aeonsync.session.id"
	AttrPriority      = "aeonsync.operation.priority"
	AttrBytesSize     = "aeonsync.operation.bytes_size"
	AttrRetryCount    = "aeonsync.operation.retry_count"

	// ========================================================================
	// Queue attributes
	// ========================================================================
	AttrQueueDepth     = "aeonsync.queue.depth"
	AttrQueueBytes     = "aeonsync.queue.bytes"
	AttrCompactedCount = "aeonsync.queue.compacted_count"

	// ========================================================================
	// Batch attributes
	// ========================================================================
	AttrBatchID         = "aeonsync.batch.id"
	AttrBatchSize       = "aeonsync.batch.size"
	AttrBatchBytes      = "aeonsync.batch.bytes"
	AttrBatchAttempt    = "aeonsync.batch.attempt"
	AttrNetworkState    = "aeonsync.network.state"
	AttrBandwidthKbps   = "aeonsync.bandwidth.speed_kbps"
	AttrBandwidthLatMs  = "aeonsync.bandwidth.latency_ms"
	AttrEffectiveType   = "aeonsync.bandwidth.effective_type"

	// ========================================================================
	// Conflict attributes
	// ========================================================================
	AttrConflictID   = "aeonsync.conflict.id"
	AttrConflictType = "aeonsync.conflict.type"
	AttrSeverity     = "aeonsync.conflict.severity"
	AttrStrategy     = "aeonsync.conflict.strategy"
	AttrSimilarity   = "aeonsync.conflict.similarity"

	// ========================================================================
	// Crypto attributes
	// ========================================================================
	AttrEncryptionVersion = "aeonsync.crypto.version"
	AttrKeyDerivation     = "aeonsync.crypto.key_derivation"
)

// Span names for operation-queue and sync-coordinator work.
const (
	SpanQueueEnqueue    = "queue.enqueue"
	SpanQueueFlush      = "queue.flush"
	SpanQueueCompact    = "queue.compact"
	SpanQueueRestore    = "queue.restore"
	SpanQueueDelete     = "queue.delete"

	SpanCryptoEncryptOp    = "crypto.encrypt_operation"
	SpanCryptoDecryptOp    = "crypto.decrypt_operation"
	SpanCryptoEncryptBatch = "crypto.encrypt_batch"
	SpanCryptoDecryptBatch = "crypto.decrypt_batch"
	SpanCryptoDeriveKey    = "crypto.derive_key"

	SpanConflictDetect  = "conflict.detect"
	SpanConflictResolve = "conflict.resolve"

	SpanSyncCreateBatch = "sync.create_batch"
	SpanSyncStartBatch  = "sync.start_batch"
	SpanSyncSendBatch   = "sync.send_batch"
)

// OperationID returns an attribute for the operation id.
func OperationID(id string) attribute.KeyValue {
	return attribute.String(AttrOperationID, id)
}

// OperationType returns an attribute for the operation type.
func OperationType(t string) attribute.KeyValue {
	return attribute.String(AttrOperationType, t)
}

// SessionID returns an attribute for the session id a conflict or
// operation is scoped to.
func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

// Priority returns an attribute for an operation's priority.
func Priority(p string) attribute.KeyValue {
	return attribute.String(AttrPriority, p)
}

// BytesSize returns an attribute for an operation's encrypted size.
func BytesSize(n int) attribute.KeyValue {
	return attribute.Int(AttrBytesSize, n)
}

// QueueDepth returns an attribute for the number of operations held by
// the queue at the time the span was recorded.
func QueueDepth(n int) attribute.KeyValue {
	return attribute.Int(AttrQueueDepth, n)
}

// QueueBytes returns an attribute for the queue's total encrypted byte
// footprint.
func QueueBytes(n int) attribute.KeyValue {
	return attribute.Int(AttrQueueBytes, n)
}

// BatchID returns an attribute for a sync batch id.
func BatchID(id string) attribute.KeyValue {
	return attribute.String(AttrBatchID, id)
}

// BatchSize returns an attribute for the number of operations in a batch.
func BatchSize(n int) attribute.KeyValue {
	return attribute.Int(AttrBatchSize, n)
}

// BatchAttempt returns an attribute for a batch's retry attempt count.
func BatchAttempt(n int) attribute.KeyValue {
	return attribute.Int(AttrBatchAttempt, n)
}

// NetworkState returns an attribute for the coordinator's current
// network state.
func NetworkState(state string) attribute.KeyValue {
	return attribute.String(AttrNetworkState, state)
}

// BandwidthKbps returns an attribute for the current bandwidth profile's
// measured or estimated speed.
func BandwidthKbps(kbps float64) attribute.KeyValue {
	return attribute.Float64(AttrBandwidthKbps, kbps)
}

// ConflictID returns an attribute for a conflict id.
func ConflictID(id string) attribute.KeyValue {
	return attribute.String(AttrConflictID, id)
}

// ConflictType returns an attribute for a conflict's classification.
func ConflictType(t string) attribute.KeyValue {
	return attribute.String(AttrConflictType, t)
}

// Severity returns an attribute for a conflict's severity.
func Severity(s string) attribute.KeyValue {
	return attribute.String(AttrSeverity, s)
}

// Strategy returns an attribute for the resolution strategy applied
// to a conflict.
func Strategy(s string) attribute.KeyValue {
	return attribute.String(AttrStrategy, s)
}

// KeyDerivation returns an attribute for which key derivation source
// (ucan or session) produced the key used by a crypto span.
func KeyDerivation(source string) attribute.KeyValue {
	return attribute.String(AttrKeyDerivation, source)
}

// StartQueueSpan starts a span for a local-queue operation.
func StartQueueSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// StartCryptoSpan starts a span for a crypto-core operation.
func StartCryptoSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// StartConflictSpan starts a span for a conflict-resolver operation.
func StartConflictSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// StartSyncSpan starts a span for a sync-coordinator operation.
func StartSyncSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}
