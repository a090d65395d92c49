package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a query or update targets a row
	// (identified by collection, id and user_id) that does not exist.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrRecordAlreadyExists is returned when an insert collides with an
	// existing row of the same collection and id.
	ErrRecordAlreadyExists = errors.New("record already exists")

	// ErrInvalidRecordData is returned when the stored or supplied data is
	// not a JSON object.
	ErrInvalidRecordData = errors.New("invalid record data")

	// ErrTemporarilyUnavailable marks failures the database classified as
	// retryable (lost connection, serialization failure, deadlock).
	ErrTemporarilyUnavailable = errors.New("database temporarily unavailable")

	// ErrSnapshotCorrupted is returned when a persisted cache snapshot
	// cannot be decompressed.
	ErrSnapshotCorrupted = errors.New("cache snapshot is corrupted")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrExecutingStatement   = errors.New("failed to executing statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrScanningRows         = errors.New("failed to scan rows")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
)
