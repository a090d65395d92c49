package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
)

type clientSyncService struct {
	collections []CollectionSync

	logger *logger.Logger
}

func NewClientSyncService(logger *logger.Logger, collections ...CollectionSync) ClientSyncService {
	return &clientSyncService{
		collections: collections,
		logger:      logger,
	}
}

func (s *clientSyncService) Initialize(ctx context.Context) error {
	return s.each(ctx, "initialize", CollectionSync.Initialize)
}

func (s *clientSyncService) SyncAll(ctx context.Context) error {
	return s.each(ctx, "sync", CollectionSync.Sync)
}

func (s *clientSyncService) DrainAll(ctx context.Context) error {
	return s.each(ctx, "drain", CollectionSync.Drain)
}

func (s *clientSyncService) Statuses() map[string]models.SyncStatus {
	out := make(map[string]models.SyncStatus, len(s.collections))
	for _, c := range s.collections {
		out[c.Collection()] = c.Status()
	}
	return out
}

// each runs fn on every collection in order. A failing collection does not
// stop the others.
func (s *clientSyncService) each(ctx context.Context, action string, fn func(CollectionSync, context.Context) error) error {
	var errs []error
	for _, c := range s.collections {
		if err := fn(c, ctx); err != nil {
			s.logger.Warn().Err(err).
				Str("func", "clientSyncService."+action).
				Str("collection", c.Collection()).
				Msg("collection " + action + " failed")
			errs = append(errs, fmt.Errorf("%s %s: %w", action, c.Collection(), err))
		}
	}
	return errors.Join(errs...)
}
