// Package eventbus implements the typed, synchronous publish/subscribe
// contract used to connect C1-C5 to external observers.
package eventbus

import "sync"

// Topic names a channel of events. Each component publishes a small,
// fixed set of topics rather than a string-keyed handler table with
// reflection-driven payloads.
type Topic string

const (
	// Queue topics (C3)
	TopicOperationQueued      Topic = "operation:queued"
	TopicOperationSyncing     Topic = "operation:syncing"
	TopicOperationSynced      Topic = "operation:synced"
	TopicOperationRetry       Topic = "operation:retry"
	TopicOperationFailedMax   Topic = "operation:failed_max_retries"
	TopicQueueError           Topic = "queue:error"
	TopicQueueCompacted       Topic = "queue:compacted"
	TopicD1Synced             Topic = "d1:synced"
	TopicShutdown             Topic = "shutdown"

	// Sync coordinator topics (C5)
	TopicNetworkOnline  Topic = "network:online"
	TopicNetworkOffline Topic = "network:offline"
	TopicNetworkChanged Topic = "network:changed"
	TopicBatchCreated   Topic = "batch:created"
	TopicBatchStarted   Topic = "batch:started"
	TopicBatchProgress  Topic = "batch:progress"
	TopicBatchCompleted Topic = "batch:completed"
	TopicBatchRetry     Topic = "batch:retry"
	TopicBatchFailed    Topic = "batch:failed"

	// Conflict resolver topics (C4)
	TopicConflictDetected Topic = "conflict:detected"
	TopicConflictResolved Topic = "conflict:resolved"
	TopicConflictRetained Topic = "conflict:retained"
)

// Handler receives an event payload published on a topic it subscribed
// to. The payload type is documented per topic by the publishing
// component.
type Handler func(payload any)

// subscription pairs a handler with a monotonically increasing id so
// Unsubscribe can target exactly one registration even when the same
// handler function is subscribed more than once.
type subscription struct {
	id      uint64
	handler Handler
	removed bool
}

// Bus is a synchronous, single-process publish/subscribe dispatcher.
// Dispatch runs on the publisher's goroutine, in subscription order;
// unsubscribing a handler mid-dispatch neither skips later handlers nor
// re-invokes the removed one.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Topic][]*subscription
}

// New constructs an empty event bus.
func New() *Bus {
	return &Bus{subs: make(map[Topic][]*subscription)}
}

// Subscribe registers handler for topic and returns an unsubscribe
// function.
func (b *Bus) Subscribe(topic Topic, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler}
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		sub.removed = true
	}
}

// Publish dispatches payload to every handler currently subscribed to
// topic, in subscription order. The subscriber list is snapshotted under
// lock before invoking any handler, so a handler subscribed during
// dispatch is first called on a later Publish; a handler unsubscribed
// during dispatch is skipped if it has not been called yet.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	subs := append([]*subscription(nil), b.subs[topic]...)
	b.mu.Unlock()

	for _, sub := range subs {
		b.mu.Lock()
		removed := sub.removed
		b.mu.Unlock()
		if removed {
			continue
		}
		sub.handler(payload)
	}
}

// SubscriberCount reports how many live subscriptions exist for topic,
// mainly for tests.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, sub := range b.subs[topic] {
		if !sub.removed {
			n++
		}
	}
	return n
}
