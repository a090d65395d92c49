package store

import (
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-study-sync/models"
)

const (
	recordsTable    = "records"
	queueTable      = "pending_operations"
	snapshotsTable  = "cache_snapshots"
	recordsColumns  = "id, collection, user_id, data, created_at, updated_at"
	queueColumns    = "id, collection, kind, entity_id, payload, enqueued_at, retry_count, next_attempt_at"
	snapshotColumns = "collection, items, version, fetched_at"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	lite = sq.StatementBuilder.PlaceholderFormat(sq.Question)
)

// ── server: records ──────────────────────────────────────────────────────────

func buildListRecordsQuery(userID int64, collection string) (string, []any, error) {
	query, args, err := psql.
		Select(recordsColumns).
		From(recordsTable).
		Where(sq.Eq{"user_id": userID, "collection": collection}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildInsertRecordQuery(rec models.StoredRecord) (string, []any, error) {
	query, args, err := psql.
		Insert(recordsTable).
		Columns("id", "collection", "user_id", "data", "created_at", "updated_at").
		Values(rec.ID, rec.Collection, rec.UserID, string(rec.Data), rec.CreatedAt, rec.UpdatedAt).
		Suffix("RETURNING " + recordsColumns).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildPatchRecordQuery merges patch into data with jsonb concatenation, so
// keys missing from patch keep their stored values.
func buildPatchRecordQuery(userID int64, collection, id string, patch json.RawMessage) (string, []any, error) {
	query, args, err := psql.
		Update(recordsTable).
		Set("data", sq.Expr("data || ?::jsonb", string(patch))).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"collection": collection, "id": id, "user_id": userID}).
		Suffix("RETURNING " + recordsColumns).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteRecordQuery(userID int64, collection, id string) (string, []any, error) {
	query, args, err := psql.
		Delete(recordsTable).
		Where(sq.Eq{"collection": collection, "id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// ── client: pending operations ───────────────────────────────────────────────

func buildLoadOperationsQuery(collection string) (string, []any, error) {
	query, args, err := lite.
		Select(queueColumns).
		From(queueTable).
		Where(sq.Eq{"collection": collection}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildSaveOperationQuery upserts by id. An update keeps seq, so a retried
// operation holds its place in the queue.
func buildSaveOperationQuery(op models.Operation, enqueuedAt string, nextAttemptAt *string) (string, []any, error) {
	query, args, err := lite.
		Insert(queueTable).
		Columns("id", "collection", "kind", "entity_id", "payload", "enqueued_at", "retry_count", "next_attempt_at").
		Values(op.ID, op.Collection, string(op.Kind), op.EntityID, []byte(op.Payload), enqueuedAt, op.RetryCount, nextAttemptAt).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			entity_id = excluded.entity_id,
			payload = excluded.payload,
			retry_count = excluded.retry_count,
			next_attempt_at = excluded.next_attempt_at`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteOperationQuery(id string) (string, []any, error) {
	query, args, err := lite.
		Delete(queueTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// ── client: cache snapshots ──────────────────────────────────────────────────

func buildLoadSnapshotQuery(collection string) (string, []any, error) {
	query, args, err := lite.
		Select(snapshotColumns).
		From(snapshotsTable).
		Where(sq.Eq{"collection": collection}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSaveSnapshotQuery(collection string, items []byte, version int64, fetchedAt string) (string, []any, error) {
	query, args, err := lite.
		Insert(snapshotsTable).
		Columns("collection", "items", "version", "fetched_at").
		Values(collection, items, version, fetchedAt).
		Suffix(`ON CONFLICT(collection) DO UPDATE SET
			items = excluded.items,
			version = excluded.version,
			fetched_at = excluded.fetched_at`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
