// Package service holds the business logic of both binaries.
//
// The server side validates and stores collection rows and publishes their
// changes to websocket subscribers. The client side wires one sync
// controller per collection and drives them from the network monitor, the
// realtime feeds and a periodic job.
package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-study-sync/models"
)

// Document is the flat JSON object a client sends and receives for one row.
type Document = map[string]any

// RecordService manages the rows of every collection for one owner.
type RecordService interface {
	List(ctx context.Context, userID int64, collection string) ([]Document, error)

	// Create stores doc. The server assigns an id when doc has none or only
	// a temporary one.
	Create(ctx context.Context, userID int64, collection string, doc Document) (Document, error)

	// Patch merges patch into the stored row. System fields are ignored.
	Patch(ctx context.Context, userID int64, collection, id string, patch Document) (Document, error)

	Delete(ctx context.Context, userID int64, collection, id string) error
}

// RecordServiceWrapper decorates a RecordService, e.g. with validation.
type RecordServiceWrapper interface {
	Wrap(RecordService) RecordService
}

// ChangePublisher receives every committed row change.
type ChangePublisher interface {
	Publish(ev models.ChangeEvent)
}

type AuthService interface {
	CreateToken(ctx context.Context, userID int64) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	Uptime() time.Duration
}

// IDGenerator issues ids for rows created without one.
type IDGenerator interface {
	Generate() string
}
