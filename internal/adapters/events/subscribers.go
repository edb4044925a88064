package events

import (
	"context"
	"sync"

	"github.com/zatekoja/feedbackform/internal/domain/entities"
)

// subscriberBuffer is the per-subscriber queue length; events beyond it are dropped.
const subscriberBuffer = 100

// subscriberSet holds the local subscriber channels of an event bus, keyed by
// bus channel. Sends happen under the read lock and closes under the write
// lock, so a subscriber is never written to after it has been closed.
type subscriberSet struct {
	mu        sync.RWMutex
	byChannel map[string]map[chan *entities.EntryEvent]struct{}
	closed    bool
	done      chan struct{}
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{
		byChannel: make(map[string]map[chan *entities.EntryEvent]struct{}),
		done:      make(chan struct{}),
	}
}

// add registers a new subscriber on channel and returns it with the channel's
// subscriber count. Once the set is closed it hands back an already closed
// channel and ok is false.
func (s *subscriberSet) add(channel string) (eventChan chan *entities.EntryEvent, count int, ok bool) {
	eventChan = make(chan *entities.EntryEvent, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(eventChan)
		return eventChan, 0, false
	}

	if s.byChannel[channel] == nil {
		s.byChannel[channel] = make(map[chan *entities.EntryEvent]struct{})
	}
	s.byChannel[channel][eventChan] = struct{}{}
	return eventChan, len(s.byChannel[channel]), true
}

// remove closes and drops one subscriber. removed is false when it was already gone.
func (s *subscriberSet) remove(channel string, eventChan chan *entities.EntryEvent) (remaining int, removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscribers := s.byChannel[channel]
	if _, ok := subscribers[eventChan]; !ok {
		return len(subscribers), false
	}

	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) == 0 {
		delete(s.byChannel, channel)
	}
	return len(subscribers), true
}

// broadcast offers event to every subscriber of channel without blocking and
// returns how many subscribers were full and missed it.
func (s *subscriberSet) broadcast(channel string, event *entities.EntryEvent) (dropped int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for subscriber := range s.byChannel[channel] {
		select {
		case subscriber <- event:
		default:
			dropped++
		}
	}
	return dropped
}

// closeChannel closes every subscriber of channel and returns how many there were.
func (s *subscriberSet) closeChannel(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeChannelLocked(channel)
}

func (s *subscriberSet) closeChannelLocked(channel string) int {
	subscribers := s.byChannel[channel]
	for subscriber := range subscribers {
		close(subscriber)
	}
	delete(s.byChannel, channel)
	return len(subscribers)
}

// closeAll closes every subscriber and refuses new ones. It is safe to call twice.
func (s *subscriberSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for channel := range s.byChannel {
		s.closeChannelLocked(channel)
	}
	s.closed = true
	close(s.done)
}

func (s *subscriberSet) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *subscriberSet) count(channel string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byChannel[channel])
}

// untilDone calls onDone once ctx ends, unless the set is closed first.
func (s *subscriberSet) untilDone(ctx context.Context, onDone func()) {
	go func() {
		select {
		case <-ctx.Done():
			onDone()
		case <-s.done:
		}
	}()
}
