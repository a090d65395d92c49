// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/store"
	"github.com/MKhiriev/go-study-sync/models"
)

type recordService struct {
	recordRepository store.RecordRepository
	publisher        ChangePublisher
	ids              IDGenerator
	now              func() time.Time

	logger *logger.Logger
}

// NewRecordService returns a RecordService backed by repo. Every committed
// write is announced through publisher.
func NewRecordService(repo store.RecordRepository, publisher ChangePublisher, ids IDGenerator, logger *logger.Logger) RecordService {
	return &recordService{
		recordRepository: repo,
		publisher:        publisher,
		ids:              ids,
		now:              time.Now,
		logger:           logger,
	}
}

func (s *recordService) List(ctx context.Context, userID int64, collection string) ([]Document, error) {
	rows, err := s.recordRepository.List(ctx, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.Document()
		if err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "recordService.List").
				Str("collection", collection).
				Str("id", row.ID).
				Msg("skipping undecodable row")
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *recordService) Create(ctx context.Context, userID int64, collection string, doc Document) (Document, error) {
	data, system := models.SplitDocument(doc)

	id, _ := system["id"].(string)
	if id == "" || models.IsTempID(id) {
		id = s.ids.Generate()
	}

	now := s.now().UTC()
	createdAt := timeField(system["created_at"], now)

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	stored, err := s.recordRepository.Insert(ctx, models.StoredRecord{
		ID:         id,
		Collection: collection,
		UserID:     userID,
		Data:       raw,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}

	s.publish(models.ChangeInsert, stored)
	return stored.Document()
}

func (s *recordService) Patch(ctx context.Context, userID int64, collection, id string, patch Document) (Document, error) {
	data, _ := models.SplitDocument(patch)

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	stored, err := s.recordRepository.Patch(ctx, userID, collection, id, raw)
	if err != nil {
		return nil, fmt.Errorf("patch %s/%s: %w", collection, id, err)
	}

	s.publish(models.ChangeUpdate, stored)
	return stored.Document()
}

func (s *recordService) Delete(ctx context.Context, userID int64, collection, id string) error {
	if err := s.recordRepository.Delete(ctx, userID, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	s.publish(models.ChangeDelete, models.StoredRecord{ID: id, Collection: collection, UserID: userID})
	return nil
}

func (s *recordService) publish(kind models.ChangeKind, rec models.StoredRecord) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(models.ChangeEvent{
		Collection: rec.Collection,
		Kind:       kind,
		ID:         rec.ID,
		UserID:     rec.UserID,
		At:         s.now().UTC(),
	})
}

// timeField parses an RFC 3339 timestamp sent by a client, falling back to
// def for missing, malformed or zero values.
func timeField(v any, def time.Time) time.Time {
	str, ok := v.(string)
	if !ok {
		return def
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil || t.IsZero() {
		return def
	}
	return t.UTC()
}
