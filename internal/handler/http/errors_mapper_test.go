package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid data", err: fmt.Errorf("%w: title is required", service.ErrInvalidDataProvided), want: http.StatusBadRequest},
		{name: "unknown collection", err: service.ErrUnknownCollection, want: http.StatusNotFound},
		{name: "no user", err: service.ErrValidationNoUserID, want: http.StatusUnauthorized},
		{name: "not found", err: fmt.Errorf("patch decks: %w", store.ErrRecordNotFound), want: http.StatusNotFound},
		{name: "duplicate", err: store.ErrRecordAlreadyExists, want: http.StatusConflict},
		{name: "retryable wins over statement error", err: errors.Join(store.ErrExecutingStatement, store.ErrTemporarilyUnavailable), want: http.StatusServiceUnavailable},
		{name: "statement error", err: store.ErrExecutingStatement, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}

func TestWriteError_HidesServerErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/", nil))

	writeError(rec, req, "test", fmt.Errorf("dial tcp 10.0.0.1: %w", store.ErrExecutingQuery))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

func TestWriteError_ExplainsClientErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/", nil))

	writeError(rec, req, "test", fmt.Errorf("%w: front is required", service.ErrInvalidDataProvided))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "front is required")
}
