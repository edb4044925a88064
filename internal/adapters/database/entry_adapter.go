package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
	"github.com/zatekoja/feedbackform/internal/domain/repositories"
	"github.com/zatekoja/feedbackform/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/feedbackform/pkg/errors"
)

const entriesTable = "entries"

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// entriesSchema orders rows by seq so List keeps insertion order.
// age is JSON, not JSONB, so the submitted text is returned unchanged.
const entriesSchema = `CREATE TABLE IF NOT EXISTS entries (
	seq     BIGSERIAL,
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	email   TEXT NOT NULL,
	age     JSON NOT NULL,
	message TEXT NOT NULL
)`

var entryColumns = []interface{}{"id", "name", "email", "age", "message"}

// EntryAdapter implements entry persistence in Postgres
type EntryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.EntryRepository = (*EntryAdapter)(nil)

// NewEntryAdapter creates a new entry adapter
func NewEntryAdapter(client *postgres.Client) *EntryAdapter {
	return &EntryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// EnsureSchema creates the entries table if it does not exist
func (a *EntryAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, entriesSchema); err != nil {
		return apperrors.NewInternalError("failed to create entries table", err)
	}
	return nil
}

// Create inserts an entry
func (a *EntryAdapter) Create(ctx context.Context, entry *entities.Entry) error {
	if entry == nil || entry.ID == "" {
		return apperrors.NewInternalError("entry id is required", fmt.Errorf("invalid entry: %v", entry))
	}

	record := goqu.Record{
		"id":      entry.ID,
		"name":    entry.Name,
		"email":   entry.Email,
		"age":     string(entry.Age),
		"message": entry.Message,
	}

	query, args, err := a.db.Insert(entriesTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build entry insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.NewConflictError(fmt.Sprintf("entry %s already exists", entry.ID))
		}
		return apperrors.NewInternalError("failed to create entry", err)
	}

	return nil
}

// List returns all entries in insertion order
func (a *EntryAdapter) List(ctx context.Context) ([]*entities.Entry, error) {
	query, args, err := a.db.Select(entryColumns...).
		From(entriesTable).
		Order(goqu.C("seq").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build entry list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list entries", err)
	}
	defer rows.Close()

	entries := make([]*entities.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate entries", err)
	}

	return entries, nil
}

// GetByID retrieves an entry by ID
func (a *EntryAdapter) GetByID(ctx context.Context, id string) (*entities.Entry, error) {
	query, args, err := a.db.Select(entryColumns...).
		From(entriesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build entry query", err)
	}

	entry, err := scanEntry(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Entry not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get entry", err)
	}

	return entry, nil
}

// Update replaces the content fields of an entry and returns the stored row
func (a *EntryAdapter) Update(ctx context.Context, id string, fields entities.EntryFields) (*entities.Entry, error) {
	record := goqu.Record{
		"name":    fields.Name,
		"email":   fields.Email,
		"age":     string(fields.Age),
		"message": fields.Message,
	}

	query, args, err := a.db.Update(entriesTable).
		Set(record).
		Where(goqu.Ex{"id": id}).
		Returning(entryColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build entry update query", err)
	}

	entry, err := scanEntry(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Entry not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update entry", err)
	}

	return entry, nil
}

// Delete removes an entry
func (a *EntryAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(entriesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build entry delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete entry", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("Entry not found")
	}

	return nil
}

// Count returns the number of stored entries
func (a *EntryAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.From(entriesTable).
		Select(goqu.COUNT("*")).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build entry count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count entries", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*entities.Entry, error) {
	var (
		entry entities.Entry
		age   []byte
	)
	if err := row.Scan(&entry.ID, &entry.Name, &entry.Email, &age, &entry.Message); err != nil {
		return nil, err
	}
	entry.Age = append([]byte(nil), age...)
	return &entry, nil
}
