// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
)

// recordRepository is the PostgreSQL-backed implementation of
// [RecordRepository] over the "records" table.
type recordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecordRepository constructs a [RecordRepository] backed by db.
func NewRecordRepository(db *DB, log *logger.Logger) RecordRepository {
	return &recordRepository{
		DB:     db,
		logger: log,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.StoredRecord, error) {
	var (
		rec  models.StoredRecord
		data []byte
	)
	if err := row.Scan(&rec.ID, &rec.Collection, &rec.UserID, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return models.StoredRecord{}, err
	}
	rec.Data = json.RawMessage(data)
	return rec, nil
}

func (r *recordRepository) List(ctx context.Context, userID int64, collection string) ([]models.StoredRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListRecordsQuery(userID, collection)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.List").Msg("failed to create query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.List").
			Int64("user_id", userID).
			Str("collection", collection).
			Msg("failed to execute query for listing records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, r.wrapError(err))
	}
	defer rows.Close()

	results := make([]models.StoredRecord, 0, 32)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.List").
				Int64("user_id", userID).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		results = append(results, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.List").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}

func (r *recordRepository) Insert(ctx context.Context, rec models.StoredRecord) (models.StoredRecord, error) {
	log := logger.FromContext(ctx)

	if !json.Valid(rec.Data) {
		return models.StoredRecord{}, ErrInvalidRecordData
	}

	query, args, err := buildInsertRecordQuery(rec)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.Insert").Msg("failed to create query")
		return models.StoredRecord{}, err
	}

	stored, err := scanRecord(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Insert").
			Int64("user_id", rec.UserID).
			Str("collection", rec.Collection).
			Str("id", rec.ID).
			Msg("failed to insert record")
		return models.StoredRecord{}, fmt.Errorf("%w: %w", ErrExecutingStatement, r.wrapError(err))
	}

	return stored, nil
}

func (r *recordRepository) Patch(ctx context.Context, userID int64, collection, id string, patch json.RawMessage) (models.StoredRecord, error) {
	log := logger.FromContext(ctx)

	if !json.Valid(patch) {
		return models.StoredRecord{}, ErrInvalidRecordData
	}

	query, args, err := buildPatchRecordQuery(userID, collection, id, patch)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.Patch").Msg("failed to create query")
		return models.StoredRecord{}, err
	}

	stored, err := scanRecord(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredRecord{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Patch").
			Int64("user_id", userID).
			Str("collection", collection).
			Str("id", id).
			Msg("failed to patch record")
		return models.StoredRecord{}, fmt.Errorf("%w: %w", ErrExecutingStatement, r.wrapError(err))
	}

	return stored, nil
}

func (r *recordRepository) Delete(ctx context.Context, userID int64, collection, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteRecordQuery(userID, collection, id)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.Delete").Msg("failed to create query")
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Delete").
			Int64("user_id", userID).
			Str("collection", collection).
			Str("id", id).
			Msg("failed to delete record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, r.wrapError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}
