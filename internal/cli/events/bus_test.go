package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SessionInvalidated(t *testing.T) {
	bus := New()
	assert.False(t, bus.HasSubscribers(SessionInvalidated))

	var got []SessionInvalidatedEvent
	require.NoError(t, bus.OnSessionInvalidated(func(ev SessionInvalidatedEvent) {
		got = append(got, ev)
	}))
	assert.True(t, bus.HasSubscribers(SessionInvalidated))

	bus.PublishSessionInvalidated(SessionInvalidatedEvent{Method: "GET", Path: "/orders/all", RequestID: "01J", Token: "abc"})

	require.Len(t, got, 1)
	assert.Equal(t, "/orders/all", got[0].Path)
	assert.Equal(t, "abc", got[0].Token)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()

	var first, second int
	require.NoError(t, bus.OnSessionInvalidated(func(SessionInvalidatedEvent) { first++ }))
	require.NoError(t, bus.OnSessionInvalidated(func(SessionInvalidatedEvent) { second++ }))

	bus.PublishSessionInvalidated(SessionInvalidatedEvent{Path: "/auth/me"})

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
