// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncengine

//go:generate mockgen -source=interfaces.go -destination=../mock/syncengine_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-study-sync/models"
)

// Entity is implemented by pointers to types embedding [models.Record].
type Entity interface {
	GetRecord() *models.Record
}

// Subscription is an open change feed. Done is closed once the feed has
// stopped delivering events for good, whether through Close or because it
// gave up on the source.
type Subscription interface {
	Close() error
	Done() <-chan struct{}
}

// ChangeSource delivers row changes of one collection.
type ChangeSource interface {
	Subscribe(ctx context.Context, onEvent func(models.ChangeEvent)) (Subscription, error)
}

// RemoteStore is the authoritative store of one collection. Select returns
// the caller's rows; ordering is applied by the controller.
type RemoteStore[T Entity] interface {
	ChangeSource
	Select(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, patch models.Patch) (T, error)
	Delete(ctx context.Context, id string) error
}

// QueueStore persists queued operations so they survive restarts.
type QueueStore interface {
	LoadOperations(ctx context.Context, collection string) ([]models.Operation, error)
	SaveOperation(ctx context.Context, op models.Operation) error
	DeleteOperation(ctx context.Context, id string) error
}

// SnapshotStore persists the last cache snapshot of a collection.
// LoadSnapshot returns nil when nothing was stored yet.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, collection string) (*models.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
}

// Connectivity reports whether the remote store is believed reachable.
type Connectivity interface {
	Online() bool
}

// Pinger checks reachability of the remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Notifier receives user-facing messages. Implementations must not block.
type Notifier interface {
	Notify(n models.Notification)
}
