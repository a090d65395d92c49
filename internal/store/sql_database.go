package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/migrations"
)

// DB is a connection to either the server or the client database.
type DB struct {
	*sql.DB
	dialect            migrations.Dialect
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies the migrations matching the connection's dialect.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Migrate(ctx, db.DB, db.dialect)
}

// wrapError maps driver errors to store sentinels and marks transient
// failures with [ErrTemporarilyUnavailable].
func (db *DB) wrapError(err error) error {
	mapped := mapPostgresError(err)
	if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
		return errors.Join(ErrTemporarilyUnavailable, mapped)
	}
	return mapped
}
