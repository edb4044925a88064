package entities

import (
	"time"

	"github.com/google/uuid"
)

// EntryEventType represents the kind of change made to an entry
type EntryEventType string

const (
	EntryEventTypeCreated EntryEventType = "entry.created"
	EntryEventTypeUpdated EntryEventType = "entry.updated"
	EntryEventTypeDeleted EntryEventType = "entry.deleted"
)

// EntryEvent is published after every successful mutation of the entry store.
// Entry is nil for deletions.
type EntryEvent struct {
	ID        string         `json:"id"`
	EntryID   string         `json:"entry_id"`
	EventType EntryEventType `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Entry     *Entry         `json:"entry,omitempty"`
}

// NewEntryEvent creates a new entry event
func NewEntryEvent(eventType EntryEventType, entryID string, entry *Entry) *EntryEvent {
	return &EntryEvent{
		ID:        uuid.NewString(),
		EntryID:   entryID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Entry:     entry.Clone(),
	}
}
