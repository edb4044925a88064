package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/zatekoja/feedbackform/internal/domain/entities"
	"github.com/zatekoja/feedbackform/internal/domain/repositories"
	apperrors "github.com/zatekoja/feedbackform/pkg/errors"
)

// EntryStore keeps entries in process memory, in insertion order.
// Lookups are linear scans by id; the collection is expected to stay small.
type EntryStore struct {
	mu      sync.RWMutex
	entries []*entities.Entry
}

var _ repositories.EntryRepository = (*EntryStore)(nil)

// NewEntryStore creates an empty in-memory entry store
func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make([]*entities.Entry, 0),
	}
}

// Create appends entry to the end of the collection
func (s *EntryStore) Create(ctx context.Context, entry *entities.Entry) error {
	if entry == nil || entry.ID == "" {
		return apperrors.NewInternalError("entry id is required", fmt.Errorf("invalid entry: %v", entry))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(entry.ID) != -1 {
		return apperrors.NewConflictError(fmt.Sprintf("entry %s already exists", entry.ID))
	}

	s.entries = append(s.entries, entry.Clone())
	return nil
}

// List returns a copy of every entry in insertion order
func (s *EntryStore) List(ctx context.Context) ([]*entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Clone())
	}
	return out, nil
}

// GetByID returns a copy of the entry with the given id
func (s *EntryStore) GetByID(ctx context.Context, id string) (*entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i == -1 {
		return nil, apperrors.NewNotFoundError("Entry not found")
	}
	return s.entries[i].Clone(), nil
}

// Update overwrites the content fields of the entry in place
func (s *EntryStore) Update(ctx context.Context, id string, fields entities.EntryFields) (*entities.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i == -1 {
		return nil, apperrors.NewNotFoundError("Entry not found")
	}

	s.entries[i].Apply(fields)
	return s.entries[i].Clone(), nil
}

// Delete removes the entry, keeping the relative order of the rest
func (s *EntryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i == -1 {
		return apperrors.NewNotFoundError("Entry not found")
	}

	copy(s.entries[i:], s.entries[i+1:])
	s.entries[len(s.entries)-1] = nil
	s.entries = s.entries[:len(s.entries)-1]
	return nil
}

// Count returns the number of stored entries
func (s *EntryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// indexOf must be called with mu held.
func (s *EntryStore) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
