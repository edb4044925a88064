package database_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/feedbackform/internal/adapters/database"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
	"github.com/zatekoja/feedbackform/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/feedbackform/pkg/errors"
)

var entryRowColumns = []string{"id", "name", "email", "age", "message"}

func setupAdapter(t *testing.T) (*database.EntryAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewEntryAdapter(postgres.NewClientFromDB(db)), mock
}

func anaEntry() *entities.Entry {
	return entities.NewEntry("e1", entities.EntryFields{
		Name:    "Ana",
		Email:   "a@x.com",
		Age:     json.RawMessage("30"),
		Message: "hi",
	})
}

func TestEntryAdapter_EnsureSchema(t *testing.T) {
	adapter, mock := setupAdapter(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS entries \((?s).*age\s+JSON NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, adapter.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryAdapter_Create(t *testing.T) {
	t.Run("inserts the entry", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectExec(`INSERT INTO "entries" \("age", "email", "id", "message", "name"\) VALUES \('30', 'a@x.com', 'e1', 'hi', 'Ana'\)`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, adapter.Create(context.Background(), anaEntry()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to conflict", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectExec(`INSERT INTO "entries"`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := adapter.Create(context.Background(), anaEntry())
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	})

	t.Run("maps driver failure to internal", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectExec(`INSERT INTO "entries"`).
			WillReturnError(errors.New("connection reset"))

		err := adapter.Create(context.Background(), anaEntry())
		assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	})

	t.Run("rejects entry without id", func(t *testing.T) {
		adapter, _ := setupAdapter(t)

		err := adapter.Create(context.Background(), &entities.Entry{Name: "Ana"})
		assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	})
}

func TestEntryAdapter_List(t *testing.T) {
	adapter, mock := setupAdapter(t)

	mock.ExpectQuery(`SELECT "id", "name", "email", "age", "message" FROM "entries" ORDER BY "seq" ASC`).
		WillReturnRows(sqlmock.NewRows(entryRowColumns).
			AddRow("e1", "Ana", "a@x.com", []byte("30"), "hi").
			AddRow("e2", "Bo", "b@x.com", []byte(`"41"`), "hey"))

	entries, err := adapter.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)
	assert.JSONEq(t, `"41"`, string(entries[1].Age))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryAdapter_ListEmpty(t *testing.T) {
	adapter, mock := setupAdapter(t)

	mock.ExpectQuery(`FROM "entries"`).
		WillReturnRows(sqlmock.NewRows(entryRowColumns))

	entries, err := adapter.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestEntryAdapter_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectQuery(`SELECT .* FROM "entries" WHERE \("id" = 'e1'\)`).
			WillReturnRows(sqlmock.NewRows(entryRowColumns).
				AddRow("e1", "Ana", "a@x.com", []byte("30"), "hi"))

		entry, err := adapter.GetByID(context.Background(), "e1")
		require.NoError(t, err)
		assert.Equal(t, anaEntry(), entry)
	})

	t.Run("not found", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectQuery(`SELECT .* FROM "entries" WHERE \("id" = 'missing'\)`).
			WillReturnRows(sqlmock.NewRows(entryRowColumns))

		_, err := adapter.GetByID(context.Background(), "missing")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestEntryAdapter_Update(t *testing.T) {
	fields := entities.EntryFields{Name: "Ana B", Email: "a@x.com", Age: json.RawMessage("31"), Message: "hi!"}

	t.Run("returns the updated row", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectQuery(`UPDATE "entries" SET .* WHERE \("id" = 'e1'\) RETURNING "id", "name", "email", "age", "message"`).
			WillReturnRows(sqlmock.NewRows(entryRowColumns).
				AddRow("e1", "Ana B", "a@x.com", []byte("31"), "hi!"))

		entry, err := adapter.Update(context.Background(), "e1", fields)
		require.NoError(t, err)
		assert.Equal(t, "e1", entry.ID)
		assert.Equal(t, "Ana B", entry.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectQuery(`UPDATE "entries"`).
			WillReturnRows(sqlmock.NewRows(entryRowColumns))

		_, err := adapter.Update(context.Background(), "missing", fields)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestEntryAdapter_Delete(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectExec(`DELETE FROM "entries" WHERE \("id" = 'e1'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, adapter.Delete(context.Background(), "e1"))
	})

	t.Run("not found", func(t *testing.T) {
		adapter, mock := setupAdapter(t)

		mock.ExpectExec(`DELETE FROM "entries"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Delete(context.Background(), "missing")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestEntryAdapter_Count(t *testing.T) {
	adapter, mock := setupAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := adapter.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
