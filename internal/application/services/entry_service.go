package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
	"github.com/zatekoja/feedbackform/internal/domain/providers"
	"github.com/zatekoja/feedbackform/internal/domain/repositories"
	"github.com/zatekoja/feedbackform/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/feedbackform/pkg/errors"
)

// ErrFieldsRequired is the validation message for an incomplete submission.
const ErrFieldsRequired = "All fields are required"

// EntryService owns the feedback entries and enforces their invariants
type EntryService struct {
	repo         repositories.EntryRepository
	newID        func() string
	eventBus     providers.EventBus
	eventChannel string
	metrics      *observability.StoreMetrics
}

// NewEntryService creates a new entry service
func NewEntryService(repo repositories.EntryRepository) *EntryService {
	return &EntryService{
		repo:         repo,
		newID:        uuid.NewString,
		eventChannel: providers.DefaultEntryEventsChannel,
	}
}

// SetEventBus enables change events on channel
func (s *EntryService) SetEventBus(eventBus providers.EventBus, channel string) {
	s.eventBus = eventBus
	if channel != "" {
		s.eventChannel = channel
	}
}

// SetMetrics enables Prometheus operation metrics
func (s *EntryService) SetMetrics(metrics *observability.StoreMetrics) {
	s.metrics = metrics
}

// SetIDGenerator replaces the UUID generator
func (s *EntryService) SetIDGenerator(newID func() string) {
	s.newID = newID
}

// Create validates fields, assigns a fresh id and appends the entry
func (s *EntryService) Create(ctx context.Context, fields entities.EntryFields) (entry *entities.Entry, err error) {
	ctx, span := observability.StartSpan(ctx, "EntryService.Create")
	defer span.End()
	defer func() { s.observe(ctx, "create", err) }()

	if !fields.Complete() {
		return nil, apperrors.NewValidationError(ErrFieldsRequired)
	}

	entry = entities.NewEntry(s.newID(), fields)
	if err = s.repo.Create(ctx, entry); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, entities.EntryEventTypeCreated, entry.ID, entry)
	return entry, nil
}

// List returns every entry in insertion order
func (s *EntryService) List(ctx context.Context) (entries []*entities.Entry, err error) {
	ctx, span := observability.StartSpan(ctx, "EntryService.List")
	defer span.End()
	defer func() { s.observe(ctx, "list", err) }()

	entries, err = s.repo.List(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return entries, nil
}

// GetByID returns the entry with the exact id
func (s *EntryService) GetByID(ctx context.Context, id string) (entry *entities.Entry, err error) {
	ctx, span := observability.StartSpan(ctx, "EntryService.GetByID")
	defer span.End()
	defer func() { s.observe(ctx, "get", err) }()

	entry, err = s.repo.GetByID(ctx, id)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return entry, nil
}

// Update replaces all four fields of an entry. Validation runs before the lookup.
func (s *EntryService) Update(ctx context.Context, id string, fields entities.EntryFields) (entry *entities.Entry, err error) {
	ctx, span := observability.StartSpan(ctx, "EntryService.Update")
	defer span.End()
	defer func() { s.observe(ctx, "update", err) }()

	if !fields.Complete() {
		return nil, apperrors.NewValidationError(ErrFieldsRequired)
	}

	entry, err = s.repo.Update(ctx, id, fields)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, entities.EntryEventTypeUpdated, entry.ID, entry)
	return entry, nil
}

// Delete removes an entry
func (s *EntryService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := observability.StartSpan(ctx, "EntryService.Delete")
	defer span.End()
	defer func() { s.observe(ctx, "delete", err) }()

	if err = s.repo.Delete(ctx, id); err != nil {
		observability.RecordError(span, err)
		return err
	}

	s.publish(ctx, entities.EntryEventTypeDeleted, id, nil)
	return nil
}

// publish never fails the caller; the mutation has already happened.
func (s *EntryService) publish(ctx context.Context, eventType entities.EntryEventType, entryID string, entry *entities.Entry) {
	if s.eventBus == nil {
		return
	}

	event := entities.NewEntryEvent(eventType, entryID, entry)
	if err := s.eventBus.Publish(ctx, s.eventChannel, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("entry_id", entryID).
			Str("event_type", string(eventType)).
			Msg("failed to publish entry event")
	}
}

func (s *EntryService) observe(ctx context.Context, operation string, err error) {
	if s.metrics == nil {
		return
	}

	s.metrics.ObserveOperation(operation, resultLabel(err))

	// Reads never change the entry count.
	if err != nil || !isMutation(operation) {
		return
	}
	if count, cerr := s.repo.Count(ctx); cerr == nil {
		s.metrics.SetEntries(count)
	}
}

func isMutation(operation string) bool {
	switch operation {
	case "create", "update", "delete":
		return true
	}
	return false
}

func resultLabel(err error) string {
	if err == nil {
		return observability.ResultSuccess
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return observability.ResultValidation
	case apperrors.ErrorTypeNotFound:
		return observability.ResultNotFound
	default:
		return observability.ResultError
	}
}
