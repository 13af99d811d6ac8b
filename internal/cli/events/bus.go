// Package events carries application-wide notifications between layers that must not import
// each other, most importantly the HTTP client telling the shell that a session is gone.
package events

import (
	"fmt"

	evbus "github.com/asaskevich/EventBus"
)

// Topics
const (
	SessionInvalidated = "session:invalidated"
)

// SessionInvalidatedEvent is published when the API rejects the current token
type SessionInvalidatedEvent struct {
	Method    string
	Path      string
	RequestID string
	Token     string // token the API rejected
}

// Bus is a synchronous, typed wrapper around EventBus. One Bus is created per application and
// passed to the components that publish or subscribe.
//
// Handlers run while the bus holds its lock, so a handler must never publish or subscribe.
type Bus struct {
	bus evbus.Bus
}

// New creates a new event bus
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// PublishSessionInvalidated notifies subscribers that the session was rejected by the API
func (b *Bus) PublishSessionInvalidated(ev SessionInvalidatedEvent) {
	b.bus.Publish(SessionInvalidated, ev)
}

// OnSessionInvalidated registers a handler for session invalidation
func (b *Bus) OnSessionInvalidated(fn func(SessionInvalidatedEvent)) error {
	if err := b.bus.Subscribe(SessionInvalidated, fn); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SessionInvalidated, err)
	}
	return nil
}

// HasSubscribers reports whether anything listens on the topic
func (b *Bus) HasSubscribers(topic string) bool {
	return b.bus.HasCallback(topic)
}
