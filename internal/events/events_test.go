package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_LocalDelivery(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var received []Event
	bus.Subscribe(QUEUE_CHANNEL, func(event Event) error {
		received = append(received, event)
		return nil
	})
	bus.Subscribe(QUEUE_CHANNEL, func(Event) error {
		return errors.New("handler failures are logged only")
	})

	err := bus.Publish(QUEUE_CHANNEL, Event{
		Type: OFFER_ACCEPTED,
		Data: map[string]any{"apartmentId": "a"},
	})
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, OFFER_ACCEPTED, received[0].Type)
	assert.Equal(t, QUEUE_CHANNEL, received[0].Channel)
	assert.NotEmpty(t, received[0].ID)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestEventBus_OtherChannelsNotNotified(t *testing.T) {
	bus := New(nil)

	called := false
	bus.Subscribe(VALUATION_CHANNEL, func(Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.Publish(QUEUE_CHANNEL, Event{Type: LOTTERY_COMPLETED}))
	assert.False(t, called)
}
