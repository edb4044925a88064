package events

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
	"github.com/zatekoja/feedbackform/internal/domain/providers"
)

// LocalEventBus fans events out to subscribers inside this process.
// It is used when Redis is not configured.
type LocalEventBus struct {
	subscribers *subscriberSet
}

var _ providers.EventBus = (*LocalEventBus)(nil)

// NewLocalEventBus creates an in-process event bus
func NewLocalEventBus() providers.EventBus {
	return &LocalEventBus{subscribers: newSubscriberSet()}
}

// Publish delivers event to every current subscriber of channel without blocking
func (b *LocalEventBus) Publish(ctx context.Context, channel string, event *entities.EntryEvent) error {
	if dropped := b.subscribers.broadcast(channel, event); dropped > 0 {
		log.Warn().
			Str("channel", channel).
			Str("entry_id", event.EntryID).
			Str("event_type", string(event.EventType)).
			Int("dropped", dropped).
			Msg("entry event skipped for slow stream subscribers")
	}
	return nil
}

// Subscribe registers a subscriber that is removed when ctx is done.
// After Close it returns a closed channel.
func (b *LocalEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.EntryEvent, error) {
	eventChan, _, ok := b.subscribers.add(channel)
	if ok {
		b.subscribers.untilDone(ctx, func() { b.subscribers.remove(channel, eventChan) })
	}
	return eventChan, nil
}

// Unsubscribe closes and drops every subscriber of channel
func (b *LocalEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.subscribers.closeChannel(channel)
	return nil
}

// Close closes every subscription
func (b *LocalEventBus) Close() error {
	b.subscribers.closeAll()
	return nil
}
