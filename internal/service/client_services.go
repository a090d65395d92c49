// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-study-sync/internal/adapter"
	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/store"
	"github.com/MKhiriev/go-study-sync/internal/syncengine"
	"github.com/MKhiriev/go-study-sync/internal/workers"
	"github.com/MKhiriev/go-study-sync/models"
)

// Remotes holds the remote store of every collection.
type Remotes struct {
	Decks      syncengine.RemoteStore[*models.Deck]
	Flashcards syncengine.RemoteStore[*models.Flashcard]
	Notes      syncengine.RemoteStore[*models.Note]
	Questions  syncengine.RemoteStore[*models.Question]
}

// NewHTTPRemotes binds every collection to server.
func NewHTTPRemotes(server *adapter.HTTPServerAdapter, log *logger.Logger) Remotes {
	return Remotes{
		Decks:      adapter.NewHTTPCollection[*models.Deck](server, models.CollectionDecks, log),
		Flashcards: adapter.NewHTTPCollection[*models.Flashcard](server, models.CollectionFlashcards, log),
		Notes:      adapter.NewHTTPCollection[*models.Note](server, models.CollectionNotes, log),
		Questions:  adapter.NewHTTPCollection[*models.Question](server, models.CollectionQuestions, log),
	}
}

// ClientServices wires one sync controller per collection together with
// the network monitor, the realtime listeners and the periodic sync job.
type ClientServices struct {
	Decks      *syncengine.Controller[*models.Deck]
	Flashcards *syncengine.Controller[*models.Flashcard]
	Notes      *syncengine.Controller[*models.Note]
	Questions  *syncengine.Controller[*models.Question]

	Network       *syncengine.NetworkMonitor
	Notifications *NotificationFeed
	SyncService   ClientSyncService
	SyncJob       ClientSyncJob
	ReviewService ReviewService

	server      adapter.ServerAdapter
	listeners   []*syncengine.RealtimeListener
	collections []CollectionSync
	workers     *workers.Workers
	logger      *logger.Logger
}

func NewClientServices(remotes Remotes, storages *store.ClientStorages, server adapter.ServerAdapter, cfg *config.ClientConfig, log *logger.Logger) *ClientServices {
	if log == nil {
		log = logger.Nop()
	}

	network := syncengine.NewNetworkMonitor(server, log)
	feed := NewNotificationFeed(log)

	engineOptions := []syncengine.Option{
		syncengine.WithConnectivity(network),
		syncengine.WithNotifier(feed),
	}
	if storages != nil {
		engineOptions = append(engineOptions,
			syncengine.WithQueueStore(storages.Queue),
			syncengine.WithSnapshotStore(storages.Snapshots),
		)
	}

	s := &ClientServices{
		Network:       network,
		Notifications: feed,
		server:        server,
		logger:        log,
	}

	s.Decks = newController(remotes.Decks, models.CollectionDecks, cfg, engineOptions, log)
	s.Flashcards = newController(remotes.Flashcards, models.CollectionFlashcards, cfg, engineOptions, log)
	s.Notes = newController(remotes.Notes, models.CollectionNotes, cfg, engineOptions, log)
	s.Questions = newController(remotes.Questions, models.CollectionQuestions, cfg, engineOptions, log)

	s.collections = []CollectionSync{s.Decks, s.Flashcards, s.Notes, s.Questions}
	s.listeners = []*syncengine.RealtimeListener{
		newListener(s.Decks, remotes.Decks, log),
		newListener(s.Flashcards, remotes.Flashcards, log),
		newListener(s.Notes, remotes.Notes, log),
		newListener(s.Questions, remotes.Questions, log),
	}

	s.SyncService = NewClientSyncService(log, s.collections...)
	s.SyncJob = NewClientSyncJob(s.SyncService, log)
	s.ReviewService = NewReviewService(s.Flashcards, nil)

	s.workers = workers.New(
		workers.Periodic(cfg.Workers.PingInterval, s.Network.Start, s.Network.Stop),
		workers.Periodic(cfg.Workers.SyncInterval, s.SyncJob.Start, s.SyncJob.Stop),
	)

	network.OnReconnect(s.onReconnect)

	return s
}

func engineOptionsFor(collection string, cfg *config.ClientConfig) syncengine.Options {
	return syncengine.Options{
		Collection:            collection,
		UserID:                cfg.App.UserID,
		CacheTimeout:          cfg.Sync.CacheTimeout,
		OfflineQueue:          cfg.Sync.OfflineQueue,
		MaxRetries:            cfg.Sync.MaxRetries,
		BackoffBase:           cfg.Sync.BackoffBase,
		BackoffCap:            cfg.Sync.BackoffCap,
		DropPermanentFailures: cfg.Sync.DropPermanentFailures,
		IsPermanent:           adapter.IsPermanent,
	}
}

func newController[T syncengine.Entity](remote syncengine.RemoteStore[T], collection string, cfg *config.ClientConfig, options []syncengine.Option, log *logger.Logger) *syncengine.Controller[T] {
	opts := append(options[:len(options):len(options)], syncengine.WithLogger(log))
	return syncengine.NewController[T](remote, engineOptionsFor(collection, cfg), opts...)
}

func newListener[T syncengine.Entity](c *syncengine.Controller[T], source syncengine.ChangeSource, log *logger.Logger) *syncengine.RealtimeListener {
	refresh := func(ctx context.Context) error {
		_, err := c.Refresh(ctx)
		return err
	}
	return syncengine.NewRealtimeListener(c.Collection(), source, refresh, log.ForCollection(c.Collection()))
}

// Collections returns the controllers in display order.
func (s *ClientServices) Collections() []CollectionSync {
	return s.collections
}

// Start pings the server, loads every collection and starts the background
// workers. Failing to reach the server is not an error: the client starts
// offline from its local snapshots.
func (s *ClientServices) Start(ctx context.Context) error {
	s.Network.Check(ctx)

	if err := s.SyncService.Initialize(ctx); err != nil {
		s.logger.Warn().Err(err).Str("func", "ClientServices.Start").Msg("starting with partial data")
	}

	s.startListeners(ctx)

	s.workers.Start(ctx)

	return nil
}

// onReconnect replays queued operations and subscribes the listeners that
// could not subscribe while offline.
func (s *ClientServices) onReconnect(ctx context.Context) {
	if err := s.SyncService.DrainAll(ctx); err != nil {
		s.logger.Warn().Err(err).Str("func", "ClientServices.onReconnect").Msg("drain after reconnect incomplete")
	}
	s.startListeners(ctx)
}

func (s *ClientServices) startListeners(ctx context.Context) {
	for _, l := range s.listeners {
		if err := l.Start(ctx); err != nil {
			s.logger.Warn().Err(err).Str("func", "ClientServices.startListeners").Msg("realtime listener not started")
		}
	}
}

// Stop shuts the workers down and closes every controller.
func (s *ClientServices) Stop() {
	s.workers.Stop()
	for _, l := range s.listeners {
		l.Stop()
	}
	for _, c := range s.collections {
		c.Close()
	}
}

// SetToken replaces the bearer token used by every remote call.
func (s *ClientServices) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidDataProvided)
	}
	s.server.SetToken(token)
	return nil
}
