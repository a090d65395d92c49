package store

import (
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/syncengine"
)

// Storages groups the server repositories.
type Storages struct {
	RecordRepository RecordRepository
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		RecordRepository: NewRecordRepository(db, log),
	}
}

// ClientStorages groups the client's local stores.
type ClientStorages struct {
	Queue     syncengine.QueueStore
	Snapshots syncengine.SnapshotStore
}

func NewClientStorages(db *DB, log *logger.Logger) *ClientStorages {
	return &ClientStorages{
		Queue:     NewQueueRepository(db, log),
		Snapshots: NewSnapshotRepository(db, log),
	}
}
