package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-todo-attachments/internal/models"
	"github.com/adanyl0v/go-todo-attachments/internal/storage"
)

var _ storage.TaskStore = (*Store)(nil)

func TestSchemaIsEmbedded(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS tasks")
	assert.Contains(t, schema, "PRIMARY KEY (user_id, id)")
}

func TestUnavailableWrapsCause(t *testing.T) {
	cause := errors.New("conn refused")
	err := unavailable("select task", cause)

	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to select task")
}

// newIntegrationStore connects to POSTGRES_TEST_URL and skips the test when it is unset.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()

	connURL := os.Getenv("POSTGRES_TEST_URL")
	if connURL == "" {
		t.Skip("POSTGRES_TEST_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewStore(zerolog.Nop(), pool)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestStore_Integration(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	ownerID := uuid.NewString()
	due := "2024-06-01"
	created := time.Now().UTC().Truncate(time.Microsecond)

	_, err := store.Insert(ctx, models.Task{
		OwnerID:   ownerID,
		ID:        "t1",
		Name:      "Buy milk",
		CreatedAt: created,
		DueDate:   &due,
	})
	require.NoError(t, err)

	_, err = store.Insert(ctx, models.Task{OwnerID: ownerID, ID: "t1", Name: "dup", CreatedAt: created})
	assert.ErrorIs(t, err, storage.ErrTaskAlreadyExists)

	got, err := store.GetOne(ctx, ownerID, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Buy milk", got.Name)
	assert.True(t, created.Equal(got.CreatedAt))
	require.NotNil(t, got.DueDate)
	assert.Equal(t, due, *got.DueDate)
	assert.Nil(t, got.AttachmentRef)

	missing, err := store.GetOne(ctx, uuid.NewString(), "t1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SetAttachmentRef(ctx, ownerID, "t1", "t1"))
	require.NoError(t, store.Update(ctx, ownerID, "t1", models.TaskUpdate{Name: "Buy oat milk", Done: true}))

	tasks, err := store.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy oat milk", tasks[0].Name)
	assert.True(t, tasks[0].Done)
	assert.Nil(t, tasks[0].DueDate)
	require.NotNil(t, tasks[0].AttachmentRef)
	assert.Equal(t, "t1", *tasks[0].AttachmentRef)

	err = store.Update(ctx, ownerID, "missing", models.TaskUpdate{Name: "x"})
	assert.ErrorIs(t, err, storage.ErrTaskNotFound)

	require.NoError(t, store.Delete(ctx, ownerID, "t1"))
	require.NoError(t, store.Delete(ctx, ownerID, "t1"))

	tasks, err = store.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
