// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
)

// Controller is the data-access layer of one collection.
//
// Create, Update and Remove change the cache before they return control to
// the network: the optimistic result is visible to Read immediately. The
// remote step runs on the controller's writer goroutine. When it cannot be
// confirmed the mutation is either queued (OfflineQueue on) and stays
// visible, or rolled back with an error notification.
//
// Methods return an error only for local faults: a closed controller, a
// cancelled context or an id missing from the cache. Remote failures are
// reported through [Controller.Status] and the [Notifier].
type Controller[T Entity] struct {
	opts      Options
	remote    RemoteStore[T]
	cache     *CacheStore[T]
	queue     *OperationQueue
	snapshots SnapshotStore
	network   Connectivity
	notifier  Notifier
	log       *logger.Logger

	tasks     chan *task
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	statusMu sync.RWMutex
	status   models.SyncStatus

	idsMu sync.Mutex
	ids   map[string]string

	// touched only by the writer goroutine
	loaded           bool
	persistedVersion int64
}

type task struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// NewController starts a controller for opts.Collection backed by remote.
// Close must be called to stop its writer goroutine.
func NewController[T Entity](remote RemoteStore[T], opts Options, options ...Option) *Controller[T] {
	opts = opts.withDefaults()

	var st settings
	for _, o := range options {
		o(&st)
	}
	if st.log == nil {
		st.log = logger.Nop()
	}
	log := st.log.ForCollection(opts.Collection)

	c := &Controller[T]{
		opts:      opts,
		remote:    remote,
		cache:     NewCacheStore[T](opts.Now),
		queue:     NewOperationQueue(opts.Collection, st.queueStore, log),
		snapshots: st.snapshotStore,
		network:   st.network,
		notifier:  st.notifier,
		log:       log,
		tasks:     make(chan *task),
		done:      make(chan struct{}),
		status:    models.SyncStatus{Phase: models.PhaseIdle},
		ids:       make(map[string]string),
	}

	c.wg.Add(1)
	go c.run()

	return c
}

func (c *Controller[T]) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case t := <-c.tasks:
			err := t.fn(t.ctx)
			c.persistSnapshot(t.ctx)
			t.done <- err
		}
	}
}

// submit runs fn on the writer goroutine and waits for it.
func (c *Controller[T]) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	t := &task{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case c.tasks <- t:
	case <-c.done:
		return ErrControllerClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-t.done
}

// Close stops the writer goroutine. Calls made afterwards fail with
// ErrControllerClosed.
func (c *Controller[T]) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}

// Collection returns the collection name.
func (c *Controller[T]) Collection() string {
	return c.opts.Collection
}

// Read returns the current cached items, newest first.
func (c *Controller[T]) Read() []T {
	return c.cache.Read()
}

// Changes signals after every cache write.
func (c *Controller[T]) Changes() <-chan struct{} {
	return c.cache.Changes()
}

// Pending returns the queued operations in FIFO order.
func (c *Controller[T]) Pending() []models.Operation {
	return c.queue.ListPending()
}

// Status returns a copy of the sync status.
func (c *Controller[T]) Status() models.SyncStatus {
	c.statusMu.RLock()
	st := c.status
	c.statusMu.RUnlock()

	if st.LastSyncAt != nil {
		at := *st.LastSyncAt
		st.LastSyncAt = &at
	}
	st.PendingCount = c.queue.Size()
	return st
}

// Initialize loads persisted state and makes the cache usable.
//
// Pending operations are drained first when online, and a fetch always
// follows a drain. Otherwise a fresh cache is served without a remote read,
// with queued operations laid over it. If the fetch fails while any
// snapshot exists, that snapshot is served, the error is recorded in the
// status and nil is returned.
func (c *Controller[T]) Initialize(ctx context.Context) error {
	return c.submit(ctx, c.initialize)
}

func (c *Controller[T]) initialize(ctx context.Context) error {
	if !c.loaded {
		c.loadLocal(ctx)
		c.loaded = true
	}

	drainRan := false
	if c.queue.Size() > 0 && c.online() {
		if _, err := c.drainQueue(ctx); err != nil {
			return err
		}
		drainRan = true
	}

	if !drainRan && c.cache.IsFresh(c.opts.CacheTimeout) {
		if c.queue.Size() > 0 {
			c.cache.Apply(func(items []T) ([]T, bool) {
				return c.overlayPending(items), true
			})
		}
		c.log.Debug().Str("func", "Controller.Initialize").Int("pending", c.queue.Size()).Msg("serving fresh cache")
		return nil
	}

	if _, err := c.refresh(ctx); err != nil {
		if c.cache.HasSnapshot() {
			c.notify(models.NotifyWarning, fmt.Sprintf("Using cached %s: %v", c.opts.Collection, err))
			return nil
		}
		return err
	}

	return nil
}

// Refresh fetches the collection, replaces the cache with it and re-applies
// still-queued mutations on top.
func (c *Controller[T]) Refresh(ctx context.Context) ([]T, error) {
	var items []T
	err := c.submit(ctx, func(ctx context.Context) error {
		var err error
		items, err = c.refresh(ctx)
		return err
	})
	return items, err
}

func (c *Controller[T]) refresh(ctx context.Context) ([]T, error) {
	c.beginPhase(models.PhaseLoading)

	items, err := c.remote.Select(ctx)
	if err != nil {
		c.fail(err)
		c.log.Warn().Err(err).Str("func", "Controller.refresh").Msg("fetch failed")
		return nil, fmt.Errorf("select %s: %w", c.opts.Collection, err)
	}

	sortNewestFirst(items)
	items = c.overlayPending(items)
	c.cache.Replace(items)
	c.markSynced()

	return c.cache.Read(), nil
}

// Sync drains the queue and then refreshes.
func (c *Controller[T]) Sync(ctx context.Context) error {
	return c.submit(ctx, func(ctx context.Context) error {
		if _, err := c.drainQueue(ctx); err != nil {
			return err
		}
		_, err := c.refresh(ctx)
		return err
	})
}

// Create adds draft with a temporary id and tries to insert it remotely.
// It returns the confirmed record, or nil when the create was queued or
// rolled back.
func (c *Controller[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if isNil(draft) {
		return zero, ErrNilEntity
	}

	item, err := cloneEntity(draft)
	if err != nil {
		return zero, err
	}

	now := c.opts.Now()
	rec := item.GetRecord()
	rec.ID = models.NewTempID()
	if rec.UserID == 0 {
		rec.UserID = c.opts.UserID
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	tempID := rec.ID

	c.cache.Apply(func(items []T) ([]T, bool) {
		return append([]T{item}, items...), true
	})

	var created T
	err = c.submit(ctx, func(ctx context.Context) error {
		created = c.createRemote(ctx, item)
		return nil
	})
	if err != nil {
		c.removeFromCache(tempID)
		return zero, err
	}

	return created, nil
}

func (c *Controller[T]) createRemote(ctx context.Context, item T) T {
	var zero T
	tempID := item.GetRecord().ID

	if c.opts.OfflineQueue && !c.online() {
		c.enqueue(ctx, models.OperationCreate, tempID, item)
		c.notify(models.NotifyInfo, fmt.Sprintf("Offline: new %s item will sync when the connection is back", c.opts.Collection))
		return zero
	}

	created, err := c.insert(ctx, item)
	if err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.Create").Str("temp_id", tempID).Msg("remote insert failed")
		if c.opts.OfflineQueue {
			c.enqueue(ctx, models.OperationCreate, tempID, item)
			c.notify(models.NotifyInfo, fmt.Sprintf("Saved offline: new %s item queued for sync", c.opts.Collection))
			return zero
		}
		c.removeFromCache(tempID)
		c.notify(models.NotifyError, fmt.Sprintf("Failed to create %s item: %v", c.opts.Collection, err))
		return zero
	}

	c.confirmCreate(ctx, tempID, created)
	return created
}

// Update merges patch into the cached record and tries to apply it
// remotely. Identity fields in the patch are ignored.
func (c *Controller[T]) Update(ctx context.Context, id string, patch models.Patch) (T, error) {
	var zero T
	id = c.resolveID(id)
	patch = patch.Without("id", "user_id", "created_at")

	var prev T
	var applyErr error
	found := c.cache.Apply(func(items []T) ([]T, bool) {
		idx := indexOf(items, id)
		if idx < 0 {
			return items, false
		}
		next, err := cloneEntity(items[idx])
		if err == nil {
			err = patch.ApplyTo(next)
		}
		if err != nil {
			applyErr = err
			return items, false
		}
		next.GetRecord().UpdatedAt = c.opts.Now()
		prev = items[idx]
		items[idx] = next
		return items, true
	})
	if applyErr != nil {
		return zero, applyErr
	}
	if !found {
		return zero, ErrEntityNotFound
	}

	var updated T
	err := c.submit(ctx, func(ctx context.Context) error {
		updated = c.updateRemote(ctx, id, patch, prev)
		return nil
	})
	if err != nil {
		c.putBack(id, prev)
		return zero, err
	}

	return updated, nil
}

func (c *Controller[T]) updateRemote(ctx context.Context, id string, patch models.Patch, prev T) T {
	var zero T
	target := c.resolveID(id)

	if c.opts.OfflineQueue && (models.IsTempID(target) || !c.online()) {
		c.enqueue(ctx, models.OperationUpdate, target, patch)
		c.notify(models.NotifyInfo, fmt.Sprintf("Offline: %s change will sync when the connection is back", c.opts.Collection))
		return zero
	}
	if c.opts.OfflineQueue && c.hasQueued(target) {
		c.enqueue(ctx, models.OperationUpdate, target, patch)
		c.notify(models.NotifyInfo, fmt.Sprintf("%s change queued behind earlier unsynced changes", c.opts.Collection))
		return zero
	}

	updated, err := c.remote.Update(ctx, target, patch)
	if err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.Update").Str("id", target).Msg("remote update failed")
		if c.opts.OfflineQueue {
			c.enqueue(ctx, models.OperationUpdate, target, patch)
			c.notify(models.NotifyInfo, fmt.Sprintf("Saved offline: %s change queued for sync", c.opts.Collection))
			return zero
		}
		c.putBack(target, prev)
		c.notify(models.NotifyError, fmt.Sprintf("Failed to update %s item: %v", c.opts.Collection, err))
		return zero
	}

	c.replaceInCache(target, updated)
	return updated
}

// Remove deletes the record from the cache and tries to delete it
// remotely. It reports true once the record is gone for good: the remote
// confirmed the delete, or the record only ever existed locally.
func (c *Controller[T]) Remove(ctx context.Context, id string) (bool, error) {
	id = c.resolveID(id)

	var removed T
	index := -1
	c.cache.Apply(func(items []T) ([]T, bool) {
		idx := indexOf(items, id)
		if idx < 0 {
			return items, false
		}
		removed, index = items[idx], idx
		return slices.Delete(items, idx, idx+1), true
	})
	if index < 0 {
		return false, ErrEntityNotFound
	}

	var ok bool
	err := c.submit(ctx, func(ctx context.Context) error {
		ok = c.removeRemote(ctx, id, removed, index)
		return nil
	})
	if err != nil {
		c.reinsert(removed, index)
		return false, err
	}

	return ok, nil
}

func (c *Controller[T]) removeRemote(ctx context.Context, id string, removed T, index int) bool {
	target := c.resolveID(id)

	if models.IsTempID(target) {
		dropped, err := c.queue.DropEntity(ctx, target)
		if err != nil {
			c.log.Warn().Err(err).Str("func", "Controller.Remove").Msg("drop queued operations")
		}
		c.log.Debug().Str("func", "Controller.Remove").Str("id", target).Int("dropped", len(dropped)).
			Msg("removed record that was never synced")
		return true
	}

	if c.opts.OfflineQueue && !c.online() {
		c.enqueue(ctx, models.OperationDelete, target, nil)
		c.notify(models.NotifyInfo, fmt.Sprintf("Offline: %s removal will sync when the connection is back", c.opts.Collection))
		return false
	}
	if c.opts.OfflineQueue && c.hasQueued(target) {
		c.enqueue(ctx, models.OperationDelete, target, nil)
		c.notify(models.NotifyInfo, fmt.Sprintf("%s removal queued behind earlier unsynced changes", c.opts.Collection))
		return false
	}

	if err := c.remote.Delete(ctx, target); err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.Remove").Str("id", target).Msg("remote delete failed")
		if c.opts.OfflineQueue {
			c.enqueue(ctx, models.OperationDelete, target, nil)
			c.notify(models.NotifyInfo, fmt.Sprintf("Saved offline: %s removal queued for sync", c.opts.Collection))
			return false
		}
		c.reinsert(removed, index)
		c.notify(models.NotifyError, fmt.Sprintf("Failed to delete %s item: %v", c.opts.Collection, err))
		return false
	}

	return true
}

func (c *Controller[T]) insert(ctx context.Context, item T) (T, error) {
	payload, err := cloneEntity(item)
	if err != nil {
		return payload, err
	}
	payload.GetRecord().ID = ""
	return c.remote.Insert(ctx, payload)
}

// confirmCreate swaps the temporary record for the confirmed one and points
// queued operations and later calls at the server id.
func (c *Controller[T]) confirmCreate(ctx context.Context, tempID string, created T) {
	serverID := created.GetRecord().ID

	c.idsMu.Lock()
	c.ids[tempID] = serverID
	c.idsMu.Unlock()

	if err := c.queue.RemapEntity(ctx, tempID, serverID); err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.confirmCreate").Msg("remap queued operations")
	}

	c.cache.Apply(func(items []T) ([]T, bool) {
		idx := indexOf(items, tempID)
		if idx < 0 {
			return items, false
		}
		items[idx] = created
		return items, true
	})
}

// resolveID maps a temporary id to its server id once the create is
// confirmed.
func (c *Controller[T]) resolveID(id string) string {
	c.idsMu.Lock()
	defer c.idsMu.Unlock()
	if serverID, ok := c.ids[id]; ok {
		return serverID
	}
	return id
}

// hasQueued reports whether an operation on id is still waiting in the
// queue. A new mutation of that entity must wait behind it.
func (c *Controller[T]) hasQueued(id string) bool {
	for _, op := range c.queue.ListPending() {
		if c.resolveID(op.EntityID) == id {
			return true
		}
	}
	return false
}

func (c *Controller[T]) enqueue(ctx context.Context, kind models.OperationKind, entityID string, payload any) {
	op := models.Operation{
		ID:         uuid.NewString(),
		Collection: c.opts.Collection,
		Kind:       kind,
		EntityID:   entityID,
		EnqueuedAt: c.opts.Now(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.log.Error().Err(err).Str("func", "Controller.enqueue").Msg("encode payload")
			return
		}
		op.Payload = raw
	}

	if err := c.queue.Enqueue(ctx, op); err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.enqueue").Str("op_id", op.ID).Msg("operation kept in memory only")
	}
	c.log.Info().Str("func", "Controller.enqueue").Str("op_id", op.ID).Str("kind", string(kind)).
		Str("entity_id", entityID).Msg("operation queued")
}

func (c *Controller[T]) removeFromCache(id string) {
	c.cache.Apply(func(items []T) ([]T, bool) {
		idx := indexOf(items, id)
		if idx < 0 {
			return items, false
		}
		return slices.Delete(items, idx, idx+1), true
	})
}

func (c *Controller[T]) replaceInCache(id string, item T) {
	c.cache.Apply(func(items []T) ([]T, bool) {
		idx := indexOf(items, id)
		if idx < 0 {
			return items, false
		}
		items[idx] = item
		return items, true
	})
}

// putBack restores the record an update replaced.
func (c *Controller[T]) putBack(id string, prev T) {
	if isNil(prev) {
		return
	}
	c.replaceInCache(id, prev)
}

// reinsert puts a removed record back at its old position.
func (c *Controller[T]) reinsert(item T, index int) {
	c.cache.Apply(func(items []T) ([]T, bool) {
		if indexOf(items, item.GetRecord().ID) >= 0 {
			return items, false
		}
		index = min(max(index, 0), len(items))
		return slices.Insert(items, index, item), true
	})
}

// overlayPending re-applies queued mutations to a fetched snapshot so that
// records the remote has not seen yet stay visible.
func (c *Controller[T]) overlayPending(items []T) []T {
	for _, op := range c.queue.ListPending() {
		id := c.resolveID(op.EntityID)
		idx := indexOf(items, id)

		switch op.Kind {
		case models.OperationCreate:
			if idx >= 0 {
				continue
			}
			item, err := decodeEntity[T](op.Payload)
			if err != nil {
				c.log.Warn().Err(err).Str("func", "Controller.overlayPending").Str("op_id", op.ID).Msg("skip create")
				continue
			}
			item.GetRecord().ID = id
			items = append([]T{item}, items...)
		case models.OperationUpdate:
			if idx < 0 {
				continue
			}
			var patch models.Patch
			if err := json.Unmarshal(op.Payload, &patch); err != nil {
				continue
			}
			next, err := cloneEntity(items[idx])
			if err != nil {
				continue
			}
			if err = patch.ApplyTo(next); err != nil {
				continue
			}
			items[idx] = next
		case models.OperationDelete:
			if idx >= 0 {
				items = slices.Delete(items, idx, idx+1)
			}
		}
	}
	return items
}

func (c *Controller[T]) online() bool {
	return c.network == nil || c.network.Online()
}

func (c *Controller[T]) notify(level models.NotificationLevel, msg string) {
	c.log.Debug().Str("func", "Controller.notify").Str("level", string(level)).Msg(msg)
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(models.Notification{
		Level:      level,
		Collection: c.opts.Collection,
		Message:    msg,
	})
}

func (c *Controller[T]) beginPhase(phase models.SyncPhase) {
	c.statusMu.Lock()
	c.status.Phase = phase
	c.status.Error = ""
	c.statusMu.Unlock()
}

func (c *Controller[T]) setIdle() {
	c.statusMu.Lock()
	c.status.Phase = models.PhaseIdle
	c.statusMu.Unlock()
}

func (c *Controller[T]) fail(err error) {
	c.statusMu.Lock()
	c.status.Phase = models.PhaseError
	c.status.Error = err.Error()
	c.statusMu.Unlock()
}

func (c *Controller[T]) markSynced() {
	now := c.opts.Now()
	c.statusMu.Lock()
	c.status.Phase = models.PhaseIdle
	c.status.Error = ""
	c.status.LastSyncAt = &now
	c.statusMu.Unlock()
}
