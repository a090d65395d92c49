package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-study-sync/models"
)

// CollectionSync is the type-independent view of one sync controller.
// *syncengine.Controller[T] implements it for every entity type.
type CollectionSync interface {
	Collection() string
	Initialize(ctx context.Context) error
	Sync(ctx context.Context) error
	Drain(ctx context.Context) error
	Status() models.SyncStatus
	Pending() []models.Operation
	Changes() <-chan struct{}
	Close()
}

// ClientSyncService drives every collection controller at once.
type ClientSyncService interface {
	// Initialize loads the local state of every collection and fetches it
	// if stale. Errors of individual collections are joined.
	Initialize(ctx context.Context) error

	// SyncAll drains the queues and refreshes every collection.
	SyncAll(ctx context.Context) error

	// DrainAll replays the queued operations of every collection.
	DrainAll(ctx context.Context) error

	// Statuses returns the status of each collection keyed by name.
	Statuses() map[string]models.SyncStatus
}

// ClientSyncJob is a background worker that periodically calls SyncAll.
type ClientSyncJob interface {
	// Start launches the background sync goroutine. It syncs every interval,
	// defaulting to 5 minutes if interval is zero or negative. Any previously
	// running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}

// Scheduler computes the next review state of a flashcard from a grade in
// [0, 5]. The result is the patch to apply to the card.
type Scheduler interface {
	Schedule(card models.Flashcard, grade int, now time.Time) models.Patch
}

// FlashcardStore is the part of the flashcard controller the review service
// needs.
type FlashcardStore interface {
	Read() []*models.Flashcard
	Update(ctx context.Context, id string, patch models.Patch) (*models.Flashcard, error)
}

// ReviewService runs spaced-repetition reviews over the cached flashcards.
type ReviewService interface {
	// Due returns the cards whose review time has come, oldest due first.
	// Cards never reviewed are always due.
	Due(now time.Time) []*models.Flashcard

	// Grade records a review of the card with id and reschedules it.
	Grade(ctx context.Context, id string, grade int) (*models.Flashcard, error)
}
