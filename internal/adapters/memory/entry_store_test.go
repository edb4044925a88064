package memory_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/feedbackform/internal/adapters/memory"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
	apperrors "github.com/zatekoja/feedbackform/pkg/errors"
)

func sampleFields(name string) entities.EntryFields {
	return entities.EntryFields{
		Name:    name,
		Email:   name + "@example.com",
		Age:     json.RawMessage("30"),
		Message: "hello from " + name,
	}
}

func seed(t *testing.T, store *memory.EntryStore, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, store.Create(context.Background(), entities.NewEntry(id, sampleFields(id))))
	}
}

func ids(entries []*entities.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestEntryStore_ListEmpty(t *testing.T) {
	store := memory.NewEntryStore()

	entries, err := store.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestEntryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()
	entry := entities.NewEntry("e1", sampleFields("ana"))

	require.NoError(t, store.Create(ctx, entry))

	got, err := store.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestEntryStore_CreateRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()
	seed(t, store, "e1")

	err := store.Create(ctx, entities.NewEntry("e1", sampleFields("other")))

	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	count, _ := store.Count(ctx)
	assert.Equal(t, 1, count)
}

func TestEntryStore_CreateRejectsMissingID(t *testing.T) {
	store := memory.NewEntryStore()

	err := store.Create(context.Background(), entities.NewEntry("", sampleFields("ana")))
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))

	err = store.Create(context.Background(), nil)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestEntryStore_ListKeepsInsertionOrder(t *testing.T) {
	store := memory.NewEntryStore()
	seed(t, store, "c", "a", "b")

	entries, err := store.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(entries))
}

func TestEntryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()
	seed(t, store, "e1")

	got, err := store.GetByID(ctx, "e1")
	require.NoError(t, err)
	got.Name = "mutated"

	listed, err := store.List(ctx)
	require.NoError(t, err)
	listed[0].Message = "mutated"

	again, err := store.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", again.Name)
	assert.Equal(t, "hello from e1", again.Message)
}

func TestEntryStore_UnknownID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()
	seed(t, store, "e1")

	_, err := store.GetByID(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = store.Update(ctx, "missing", sampleFields("x"))
	assert.True(t, apperrors.IsNotFound(err))

	err = store.Delete(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))

	// ids match exactly, never by prefix or case
	_, err = store.GetByID(ctx, "E1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEntryStore_UpdatePreservesIDAndPosition(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()
	seed(t, store, "a", "b", "c")

	updated, err := store.Update(ctx, "b", entities.EntryFields{
		Name:    "Ana B",
		Email:   "a@x.com",
		Age:     json.RawMessage("31"),
		Message: "hi!",
	})
	require.NoError(t, err)
	assert.Equal(t, "b", updated.ID)
	assert.Equal(t, "Ana B", updated.Name)
	assert.JSONEq(t, "31", string(updated.Age))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(entries))
	assert.Equal(t, "Ana B", entries[1].Name)
	assert.Equal(t, "a", entries[0].Name)
}

func TestEntryStore_DeletePreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()
	seed(t, store, "a", "b", "c", "d")

	require.NoError(t, store.Delete(ctx, "b"))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, ids(entries))

	require.NoError(t, store.Delete(ctx, "d"))
	require.NoError(t, store.Delete(ctx, "a"))

	entries, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(entries))
}

func TestEntryStore_CountTracksCreatesMinusDeletes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()
	seed(t, store, "a", "b", "c")
	require.NoError(t, store.Delete(ctx, "a"))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEntryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEntryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("e%d", i)
			assert.NoError(t, store.Create(ctx, entities.NewEntry(id, sampleFields(id))))
			_, err := store.List(ctx)
			assert.NoError(t, err)
			_, err = store.Update(ctx, id, sampleFields("updated"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}
