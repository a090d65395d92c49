// Package store holds the persistence layer: the server's PostgreSQL record
// repository and the client's SQLite-backed operation queue and cache
// snapshots.
package store

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-study-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RecordRepository persists the rows of every collection on the server.
// All methods are scoped to one owner.
type RecordRepository interface {
	// List returns the owner's rows of collection, newest first.
	List(ctx context.Context, userID int64, collection string) ([]models.StoredRecord, error)

	// Insert stores rec and returns it with database timestamps.
	// Returns [ErrRecordAlreadyExists] on an id collision.
	Insert(ctx context.Context, rec models.StoredRecord) (models.StoredRecord, error)

	// Patch merges patch (a JSON object) into the row's data.
	// Returns [ErrRecordNotFound] if the row does not exist.
	Patch(ctx context.Context, userID int64, collection, id string, patch json.RawMessage) (models.StoredRecord, error)

	// Delete removes the row. Returns [ErrRecordNotFound] if it did not exist.
	Delete(ctx context.Context, userID int64, collection, id string) error
}

// ErrorClassificator decides whether a failed database call may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
