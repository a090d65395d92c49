package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/internal/store"
)

type errorStatus struct {
	target error
	status int
}

// errorStatuses is matched in order: a retryable database failure wraps a
// low-level statement error too, and must win over it.
var errorStatuses = []errorStatus{
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{service.ErrUnknownCollection, http.StatusNotFound},
	{service.ErrEmptyRecordID, http.StatusBadRequest},
	{service.ErrValidationNoUserID, http.StatusUnauthorized},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
	{service.ErrVersionIsNotSpecified, http.StatusBadRequest},

	{store.ErrRecordNotFound, http.StatusNotFound},
	{store.ErrRecordAlreadyExists, http.StatusConflict},
	{store.ErrInvalidRecordData, http.StatusBadRequest},
	{store.ErrTemporarilyUnavailable, http.StatusServiceUnavailable},

	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrBeginningTransaction, http.StatusInternalServerError},
	{store.ErrCommitingTransaction, http.StatusInternalServerError},
	{store.ErrExecutingStatement, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status mapped from err. Client errors carry
// the error text so the sync engine can surface it; server errors do not.
func writeError(w http.ResponseWriter, r *http.Request, funcName string, err error) {
	status := statusFromError(err)

	log := logger.FromRequest(r)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("func", funcName).Int("status", status).Msg("request failed")

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}
