package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
	"github.com/zatekoja/feedbackform/internal/domain/providers"
	redisclient "github.com/zatekoja/feedbackform/internal/infrastructure/clients/redis"
)

// RedisEventBus relays entry events between API instances over Redis Pub/Sub.
// Each bus channel with local subscribers holds one Redis subscription, opened
// by the first subscriber and closed when the last one leaves.
type RedisEventBus struct {
	client      *redisclient.Client
	subscribers *subscriberSet

	// mu serializes relay start and stop with subscriber membership changes.
	mu     sync.Mutex
	relays map[string]*redis.PubSub
}

var _ providers.EventBus = (*RedisEventBus)(nil)

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	return &RedisEventBus{
		client:      client,
		subscribers: newSubscriberSet(),
		relays:      make(map[string]*redis.PubSub),
	}
}

// Publish sends event to every instance subscribed to channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.EntryEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal entry event: %w", err)
	}

	receivers, err := b.client.Client().Publish(ctx, channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish entry event: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("entry_id", event.EntryID).
		Str("event_type", string(event.EventType)).
		Int64("receivers", receivers).
		Msg("published entry event")
	return nil
}

// Subscribe returns a channel of entry events published on channel until ctx
// is done. The Redis subscription is confirmed before Subscribe returns, so
// events published afterwards are not missed. After Close it returns a closed
// channel.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.EntryEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers.isClosed() {
		closed := make(chan *entities.EntryEvent)
		close(closed)
		return closed, nil
	}

	if _, running := b.relays[channel]; !running {
		// The relay outlives the first subscriber, so it is not bound to ctx.
		pubsub := b.client.Client().Subscribe(context.Background(), channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		b.relays[channel] = pubsub
		go b.relay(channel, pubsub)
		log.Info().Str("channel", channel).Msg("entry event relay started")
	}

	eventChan, count, _ := b.subscribers.add(channel)
	log.Debug().Str("channel", channel).Int("subscribers", count).Msg("entry stream subscribed")

	b.subscribers.untilDone(ctx, func() { b.removeSubscriber(channel, eventChan) })
	return eventChan, nil
}

// relay decodes Redis messages and hands them to local subscribers. It ends
// when its subscription is closed.
func (b *RedisEventBus) relay(channel string, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		var event entities.EntryEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Int("bytes", len(msg.Payload)).Msg("ignoring malformed entry event")
			continue
		}

		if dropped := b.subscribers.broadcast(channel, &event); dropped > 0 {
			log.Warn().
				Str("channel", channel).
				Str("entry_id", event.EntryID).
				Str("event_type", string(event.EventType)).
				Int("dropped", dropped).
				Msg("entry event skipped for slow stream subscribers")
		}
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, eventChan chan *entities.EntryEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	remaining, removed := b.subscribers.remove(channel, eventChan)
	if removed && remaining == 0 {
		if err := b.stopRelayLocked(channel); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("failed to stop entry event relay")
		}
	}
}

func (b *RedisEventBus) stopRelayLocked(channel string) error {
	pubsub, ok := b.relays[channel]
	if !ok {
		return nil
	}
	delete(b.relays, channel)

	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	log.Info().Str("channel", channel).Msg("entry event relay stopped")
	return nil
}

// Unsubscribe closes every local subscriber of channel and its Redis subscription
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers.closeChannel(channel)
	return b.stopRelayLocked(channel)
}

// Close ends every subscription. The Redis client itself is left open.
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers.closeAll()

	var errs []error
	for channel := range b.relays {
		if err := b.stopRelayLocked(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing event bus: %w", err)
	}

	log.Info().Msg("entry event bus closed")
	return nil
}
