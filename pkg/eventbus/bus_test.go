package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDispatchesInSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int

	b.Subscribe(TopicOperationQueued, func(any) { order = append(order, 1) })
	b.Subscribe(TopicOperationQueued, func(any) { order = append(order, 2) })
	b.Subscribe(TopicOperationQueued, func(any) { order = append(order, 3) })

	b.Publish(TopicOperationQueued, nil)

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestUnsubscribeStopsFutureDispatch(t *testing.T) {
	b := New()
	calls := 0
	unsub := b.Subscribe(TopicQueueError, func(any) { calls++ })

	b.Publish(TopicQueueError, nil)
	unsub()
	b.Publish(TopicQueueError, nil)

	assert.Equal(t, 1, calls)
}

func TestUnsubscribeDuringDispatchDoesNotSkipLaterHandlers(t *testing.T) {
	b := New()
	var order []int
	var unsubSecond func()

	b.Subscribe(TopicBatchCreated, func(any) { order = append(order, 1) })
	unsubSecond = b.Subscribe(TopicBatchCreated, func(any) {
		order = append(order, 2)
		unsubSecond()
	})
	b.Subscribe(TopicBatchCreated, func(any) { order = append(order, 3) })

	b.Publish(TopicBatchCreated, nil)
	assert.Equal(t, []int{1, 2, 3}, order)

	order = nil
	b.Publish(TopicBatchCreated, nil)
	assert.Equal(t, []int{1, 3}, order)
}

func TestPublishPassesPayload(t *testing.T) {
	b := New()
	var got *OperationEvent
	b.Subscribe(TopicOperationSynced, func(payload any) {
		got = payload.(*OperationEvent)
	})

	evt := &OperationEvent{OperationID: "op_1"}
	b.Publish(TopicOperationSynced, evt)

	assert.Equal(t, "op_1", got.OperationID)
}

func TestSubscriberCount(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.SubscriberCount(TopicShutdown))

	unsub := b.Subscribe(TopicShutdown, func(any) {})
	assert.Equal(t, 1, b.SubscriberCount(TopicShutdown))

	unsub()
	assert.Equal(t, 0, b.SubscriberCount(TopicShutdown))
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Publish(TopicD1Synced, nil)
	})
}
