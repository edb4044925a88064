package providers

import (
	"context"

	"github.com/zatekoja/feedbackform/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to entry events
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.EntryEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.EntryEvent, error)

	// Unsubscribe drops every subscriber of a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// DefaultEntryEventsChannel is the channel entry changes are published on
const DefaultEntryEventsChannel = "entries:events"
