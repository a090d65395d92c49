// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/syncengine"
	"github.com/MKhiriev/go-study-sync/models"
)

// queueRepository keeps the offline operation queue in the local SQLite
// database. Rows are returned in insertion order.
type queueRepository struct {
	*DB
	logger *logger.Logger
}

var _ syncengine.QueueStore = (*queueRepository)(nil)

// NewQueueRepository constructs a [syncengine.QueueStore] backed by db.
func NewQueueRepository(db *DB, log *logger.Logger) syncengine.QueueStore {
	return &queueRepository{DB: db, logger: log}
}

func (q *queueRepository) LoadOperations(ctx context.Context, collection string) ([]models.Operation, error) {
	query, args, err := buildLoadOperationsQuery(collection)
	if err != nil {
		return nil, err
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		q.logger.Err(err).
			Str("func", "queueRepository.LoadOperations").
			Str("collection", collection).
			Msg("failed to load pending operations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ops []models.Operation
	for rows.Next() {
		var (
			op            models.Operation
			kind          string
			payload       []byte
			enqueuedAt    string
			nextAttemptAt sql.NullString
		)
		if err = rows.Scan(&op.ID, &op.Collection, &kind, &op.EntityID, &payload, &enqueuedAt, &op.RetryCount, &nextAttemptAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		op.Kind = models.OperationKind(kind)
		if len(payload) > 0 {
			op.Payload = payload
		}
		if op.EnqueuedAt, err = parseTime(enqueuedAt); err != nil {
			return nil, fmt.Errorf("%w: enqueued_at: %w", ErrScanningRow, err)
		}
		if nextAttemptAt.Valid && nextAttemptAt.String != "" {
			if op.NextAttemptAt, err = parseTime(nextAttemptAt.String); err != nil {
				return nil, fmt.Errorf("%w: next_attempt_at: %w", ErrScanningRow, err)
			}
		}

		ops = append(ops, op)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ops, nil
}

func (q *queueRepository) SaveOperation(ctx context.Context, op models.Operation) error {
	var nextAttemptAt *string
	if !op.NextAttemptAt.IsZero() {
		s := formatTime(op.NextAttemptAt)
		nextAttemptAt = &s
	}

	query, args, err := buildSaveOperationQuery(op, formatTime(op.EnqueuedAt), nextAttemptAt)
	if err != nil {
		return err
	}

	if _, err = q.DB.ExecContext(ctx, query, args...); err != nil {
		q.logger.Err(err).
			Str("func", "queueRepository.SaveOperation").
			Str("collection", op.Collection).
			Str("operation_id", op.ID).
			Msg("failed to save pending operation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (q *queueRepository) DeleteOperation(ctx context.Context, id string) error {
	query, args, err := buildDeleteOperationQuery(id)
	if err != nil {
		return err
	}

	if _, err = q.DB.ExecContext(ctx, query, args...); err != nil {
		q.logger.Err(err).
			Str("func", "queueRepository.DeleteOperation").
			Str("operation_id", id).
			Msg("failed to delete pending operation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
