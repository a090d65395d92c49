package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/syncengine"
	"github.com/MKhiriev/go-study-sync/models"
	"github.com/golang/snappy"
)

// snapshotRepository stores one snappy-compressed cache snapshot per
// collection in the local SQLite database.
type snapshotRepository struct {
	*DB
	logger *logger.Logger
}

var _ syncengine.SnapshotStore = (*snapshotRepository)(nil)

// NewSnapshotRepository constructs a [syncengine.SnapshotStore] backed by db.
func NewSnapshotRepository(db *DB, log *logger.Logger) syncengine.SnapshotStore {
	return &snapshotRepository{DB: db, logger: log}
}

func (s *snapshotRepository) LoadSnapshot(ctx context.Context, collection string) (*models.Snapshot, error) {
	query, args, err := buildLoadSnapshotQuery(collection)
	if err != nil {
		return nil, err
	}

	var (
		snap       models.Snapshot
		compressed []byte
		fetchedAt  string
	)
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&snap.Collection, &compressed, &snap.Version, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Err(err).
			Str("func", "snapshotRepository.LoadSnapshot").
			Str("collection", collection).
			Msg("failed to load cache snapshot")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if snap.Items, err = snappy.Decode(nil, compressed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupted, err)
	}
	if snap.FetchedAt, err = parseTime(fetchedAt); err != nil {
		return nil, fmt.Errorf("%w: fetched_at: %w", ErrScanningRow, err)
	}

	return &snap, nil
}

func (s *snapshotRepository) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	compressed := snappy.Encode(nil, snap.Items)

	query, args, err := buildSaveSnapshotQuery(snap.Collection, compressed, snap.Version, formatTime(snap.FetchedAt))
	if err != nil {
		return err
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).
			Str("func", "snapshotRepository.SaveSnapshot").
			Str("collection", snap.Collection).
			Msg("failed to save cache snapshot")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	s.logger.Debug().
		Str("func", "snapshotRepository.SaveSnapshot").
		Str("collection", snap.Collection).
		Int("raw_bytes", len(snap.Items)).
		Int("stored_bytes", len(compressed)).
		Msg("cache snapshot saved")

	return nil
}
