// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncengine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
)

// OperationQueue is the FIFO of mutations waiting for the remote store.
// Order is enqueue order and is never changed by updates. When a
// [QueueStore] is set every change is written through; a failed write keeps
// the in-memory state and reports the error.
type OperationQueue struct {
	mu         sync.Mutex
	collection string
	ops        []models.Operation
	store      QueueStore
	log        *logger.Logger
}

// NewOperationQueue returns an empty queue. store may be nil.
func NewOperationQueue(collection string, store QueueStore, log *logger.Logger) *OperationQueue {
	if log == nil {
		log = logger.Nop()
	}
	return &OperationQueue{
		collection: collection,
		store:      store,
		log:        log,
	}
}

// Load replaces the in-memory queue with the persisted one.
func (q *OperationQueue) Load(ctx context.Context) error {
	if q.store == nil {
		return nil
	}

	ops, err := q.store.LoadOperations(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	q.mu.Lock()
	q.ops = ops
	q.mu.Unlock()

	q.log.Debug().Str("func", "OperationQueue.Load").Int("size", len(ops)).Msg("queue restored")
	return nil
}

// Enqueue appends op to the tail.
func (q *OperationQueue) Enqueue(ctx context.Context, op models.Operation) error {
	if op.Collection == "" {
		op.Collection = q.collection
	}

	q.mu.Lock()
	q.ops = append(q.ops, op)
	q.mu.Unlock()

	return q.save(ctx, op)
}

// DequeueConfirmed removes the operation the remote store accepted.
func (q *OperationQueue) DequeueConfirmed(ctx context.Context, id string) error {
	return q.remove(ctx, id)
}

// Drop removes an operation that will never be retried.
func (q *OperationQueue) Drop(ctx context.Context, id string) error {
	return q.remove(ctx, id)
}

// ListPending returns a copy of the queued operations in FIFO order.
func (q *OperationQueue) ListPending() []models.Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.ops)
}

// Size returns the number of queued operations.
func (q *OperationQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Update replaces the queued operation with the same id, keeping its place.
func (q *OperationQueue) Update(ctx context.Context, op models.Operation) error {
	q.mu.Lock()
	idx := slices.IndexFunc(q.ops, func(o models.Operation) bool { return o.ID == op.ID })
	if idx < 0 {
		q.mu.Unlock()
		return nil
	}
	q.ops[idx] = op
	q.mu.Unlock()

	return q.save(ctx, op)
}

// RemapEntity points every operation on oldID at newID. It is used once a
// create has been confirmed and the temporary id is replaced.
func (q *OperationQueue) RemapEntity(ctx context.Context, oldID, newID string) error {
	q.mu.Lock()
	var changed []models.Operation
	for i := range q.ops {
		if q.ops[i].EntityID == oldID {
			q.ops[i].EntityID = newID
			changed = append(changed, q.ops[i])
		}
	}
	q.mu.Unlock()

	var firstErr error
	for _, op := range changed {
		if err := q.save(ctx, op); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DropEntity removes every operation targeting entityID and returns them.
func (q *OperationQueue) DropEntity(ctx context.Context, entityID string) ([]models.Operation, error) {
	q.mu.Lock()
	var dropped []models.Operation
	q.ops = slices.DeleteFunc(q.ops, func(o models.Operation) bool {
		if o.EntityID == entityID {
			dropped = append(dropped, o)
			return true
		}
		return false
	})
	q.mu.Unlock()

	var firstErr error
	for _, op := range dropped {
		if err := q.delete(ctx, op.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return dropped, firstErr
}

func (q *OperationQueue) remove(ctx context.Context, id string) error {
	q.mu.Lock()
	before := len(q.ops)
	q.ops = slices.DeleteFunc(q.ops, func(o models.Operation) bool { return o.ID == id })
	removed := len(q.ops) != before
	q.mu.Unlock()

	if !removed {
		return nil
	}
	return q.delete(ctx, id)
}

func (q *OperationQueue) save(ctx context.Context, op models.Operation) error {
	if q.store == nil {
		return nil
	}
	if err := q.store.SaveOperation(ctx, op); err != nil {
		return fmt.Errorf("persist operation %s: %w", op.ID, err)
	}
	return nil
}

func (q *OperationQueue) delete(ctx context.Context, id string) error {
	if q.store == nil {
		return nil
	}
	if err := q.store.DeleteOperation(ctx, id); err != nil {
		return fmt.Errorf("delete operation %s: %w", id, err)
	}
	return nil
}
