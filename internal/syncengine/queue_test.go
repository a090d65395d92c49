package syncengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-study-sync/models"
)

func op(id, entity string, kind models.OperationKind) models.Operation {
	return models.Operation{ID: id, Kind: kind, EntityID: entity}
}

func opIDs(ops []models.Operation) []string {
	out := make([]string, 0, len(ops))
	for _, o := range ops {
		out = append(out, o.ID)
	}
	return out
}

func TestOperationQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := NewOperationQueue(models.CollectionNotes, nil, nil)

	require.NoError(t, q.Enqueue(ctx, op("1", "a", models.OperationCreate)))
	require.NoError(t, q.Enqueue(ctx, op("2", "b", models.OperationUpdate)))
	require.NoError(t, q.Enqueue(ctx, op("3", "a", models.OperationDelete)))

	assert.Equal(t, 3, q.Size())
	assert.Equal(t, []string{"1", "2", "3"}, opIDs(q.ListPending()))
	assert.Equal(t, models.CollectionNotes, q.ListPending()[0].Collection)

	require.NoError(t, q.DequeueConfirmed(ctx, "2"))
	assert.Equal(t, []string{"1", "3"}, opIDs(q.ListPending()))
}

func TestOperationQueue_UpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	q := NewOperationQueue(models.CollectionNotes, nil, nil)
	require.NoError(t, q.Enqueue(ctx, op("1", "a", models.OperationCreate)))
	require.NoError(t, q.Enqueue(ctx, op("2", "b", models.OperationCreate)))

	updated := op("1", "a", models.OperationCreate)
	updated.RetryCount = 2
	require.NoError(t, q.Update(ctx, updated))

	pending := q.ListPending()
	assert.Equal(t, []string{"1", "2"}, opIDs(pending))
	assert.Equal(t, 2, pending[0].RetryCount)
}

func TestOperationQueue_RemapAndDropEntity(t *testing.T) {
	ctx := context.Background()
	store := &memQueueStore{}
	q := NewOperationQueue(models.CollectionNotes, store, nil)
	require.NoError(t, q.Enqueue(ctx, op("1", "temp_x", models.OperationCreate)))
	require.NoError(t, q.Enqueue(ctx, op("2", "temp_x", models.OperationUpdate)))
	require.NoError(t, q.Enqueue(ctx, op("3", "other", models.OperationDelete)))

	require.NoError(t, q.RemapEntity(ctx, "temp_x", "srv-9"))
	for _, o := range q.ListPending()[:2] {
		assert.Equal(t, "srv-9", o.EntityID)
	}

	dropped, err := q.DropEntity(ctx, "srv-9")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, opIDs(dropped))
	assert.Equal(t, []string{"3"}, opIDs(q.ListPending()))
	assert.Equal(t, 1, store.len())
}

func TestOperationQueue_LoadRestoresPersistedOrder(t *testing.T) {
	ctx := context.Background()
	store := &memQueueStore{}
	first := NewOperationQueue(models.CollectionNotes, store, nil)
	require.NoError(t, first.Enqueue(ctx, op("1", "a", models.OperationCreate)))
	require.NoError(t, first.Enqueue(ctx, op("2", "b", models.OperationCreate)))

	second := NewOperationQueue(models.CollectionNotes, store, nil)
	require.NoError(t, second.Load(ctx))
	assert.Equal(t, []string{"1", "2"}, opIDs(second.ListPending()))
}

type failingQueueStore struct{ memQueueStore }

func (s *failingQueueStore) SaveOperation(context.Context, models.Operation) error {
	return errors.New("disk full")
}

func TestOperationQueue_PersistFailureKeepsMemoryState(t *testing.T) {
	q := NewOperationQueue(models.CollectionNotes, &failingQueueStore{}, nil)

	err := q.Enqueue(context.Background(), op("1", "a", models.OperationCreate))
	assert.Error(t, err)
	assert.Equal(t, 1, q.Size())
}
