package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/feedbackform/internal/adapters/events"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
)

func receive(t *testing.T, ch <-chan *entities.EntryEvent) *entities.EntryEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestLocalEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := events.NewLocalEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, "entries:events")
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, "entries:events")
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, "other")
	require.NoError(t, err)

	event := entities.NewEntryEvent(entities.EntryEventTypeDeleted, "e1", nil)
	require.NoError(t, bus.Publish(context.Background(), "entries:events", event))

	assert.Equal(t, event.ID, receive(t, first).ID)
	assert.Equal(t, event.ID, receive(t, second).ID)
	assert.Empty(t, other)
}

func TestLocalEventBus_ContextCancelClosesSubscription(t *testing.T) {
	bus := events.NewLocalEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, "entries:events")
	require.NoError(t, err)

	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	// publishing after the subscriber left must not panic
	assert.NoError(t, bus.Publish(context.Background(), "entries:events",
		entities.NewEntryEvent(entities.EntryEventTypeDeleted, "e1", nil)))
}

func TestLocalEventBus_CloseClosesSubscribers(t *testing.T) {
	bus := events.NewLocalEventBus()

	ch, err := bus.Subscribe(context.Background(), "entries:events")
	require.NoError(t, err)

	require.NoError(t, bus.Close())

	_, ok := <-ch
	assert.False(t, ok)

	late, err := bus.Subscribe(context.Background(), "entries:events")
	require.NoError(t, err)
	_, ok = <-late
	assert.False(t, ok)
}

func TestLocalEventBus_Unsubscribe(t *testing.T) {
	bus := events.NewLocalEventBus()
	defer bus.Close()

	ch, err := bus.Subscribe(context.Background(), "entries:events")
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(context.Background(), "entries:events"))

	_, ok := <-ch
	assert.False(t, ok)
}
