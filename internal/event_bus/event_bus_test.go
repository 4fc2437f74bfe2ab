package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testEvent EventType = "test.event"

type payload struct {
	Value int
}

func TestEventBus_PublishDeliversToTypedSubscriber(t *testing.T) {
	bus := NewEventBus()

	var received []payload
	SubscribeTyped(bus, testEvent, func(e EventT[payload]) error {
		received = append(received, e.Data)
		return nil
	})

	// when
	err := bus.Publish(NewEvent(context.Background(), testEvent, payload{Value: 42}))

	// then
	assert.NoError(t, err)
	if assert.Len(t, received, 1) {
		assert.Equal(t, 42, received[0].Value)
	}
}

func TestEventBus_PublishSkipsMismatchedPayload(t *testing.T) {
	bus := NewEventBus()

	called := false
	SubscribeTyped(bus, testEvent, func(e EventT[payload]) error {
		called = true
		return nil
	})

	// when: payload is a string, not a payload struct
	err := bus.Publish(NewEvent(context.Background(), testEvent, "wrong type"))

	// then
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestEventBus_HandlerErrorsAreCollected(t *testing.T) {
	bus := NewEventBus()
	failure := errors.New("handler failed")

	secondCalled := false
	bus.Subscribe(testEvent, func(e Event) error {
		return failure
	})
	bus.Subscribe(testEvent, func(e Event) error {
		secondCalled = true
		return nil
	})

	// when
	err := bus.Publish(NewEvent(context.Background(), testEvent, payload{}))

	// then: the error is reported but delivery continues
	assert.ErrorIs(t, err, failure)
	assert.True(t, secondCalled)
}

func TestEventBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(testEvent, func(e Event) error {
		panic("boom")
	})

	// when
	err := bus.Publish(NewEvent(context.Background(), testEvent, payload{}))

	// then
	assert.Error(t, err)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	unsubscribe := bus.Subscribe(testEvent, func(e Event) error {
		calls++
		return nil
	})

	assert.NoError(t, bus.Publish(NewEvent(context.Background(), testEvent, payload{})))
	unsubscribe()
	assert.NoError(t, bus.Publish(NewEvent(context.Background(), testEvent, payload{})))

	assert.Equal(t, 1, calls)
}

func TestEventBus_PublishRunsHandlersInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()

	var order []int
	for i := 1; i <= 5; i++ {
		bus.Subscribe(testEvent, func(e Event) error {
			order = append(order, i)
			return nil
		})
	}

	// when
	err := bus.Publish(NewEvent(context.Background(), testEvent, payload{}))

	// then
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestEventBus_CancelledContextSkipsHandlers(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(testEvent, func(e Event) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	err := bus.Publish(NewEvent(ctx, testEvent, payload{}))

	// then
	assert.Error(t, err)
	assert.False(t, called)
}
