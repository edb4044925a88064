package repositories

import (
	"context"

	"github.com/zatekoja/feedbackform/internal/domain/entities"
)

// EntryRepository defines the interface for the entry collection.
// Implementations keep insertion order and return copies, never shared references.
type EntryRepository interface {
	// Create appends entry. The id must be set and unique.
	Create(ctx context.Context, entry *entities.Entry) error

	// List returns all entries in insertion order.
	List(ctx context.Context) ([]*entities.Entry, error)

	// GetByID returns the entry with the exact id.
	GetByID(ctx context.Context, id string) (*entities.Entry, error)

	// Update replaces the content fields of the entry with id, preserving its position.
	Update(ctx context.Context, id string, fields entities.EntryFields) (*entities.Entry, error)

	// Delete removes the entry with id.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}
