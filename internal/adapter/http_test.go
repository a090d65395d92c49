// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/config"
	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/utils"
	"github.com/MKhiriev/go-study-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "testhashkey"

// newTestAdapter creates an adapter pointed at the test server.
func newTestAdapter(t *testing.T, serverURL string) *HTTPServerAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: 5 * time.Second}
	appCfg := config.ClientApp{HashKey: testHashKey, Token: "token-1"}

	a, err := NewHTTPServerAdapter(adapterCfg, appCfg, logger.Nop())
	require.NoError(t, err)
	return a
}

func newDecks(t *testing.T, serverURL string) *HTTPCollection[*models.Deck] {
	t.Helper()
	return NewHTTPCollection[*models.Deck](newTestAdapter(t, serverURL), models.CollectionDecks, logger.Nop())
}

// ── construction ────────────────────────────────────────────────────────────

func TestNewHTTPServerAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: "   "}, config.ClientApp{}, logger.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "host and port", raw: "localhost:8080", want: "http://localhost:8080"},
		{name: "trailing slash", raw: "https://study.example.com/", want: "https://study.example.com"},
		{name: "surrounding spaces", raw: "  http://127.0.0.1:9090 ", want: "http://127.0.0.1:9090"},
		{name: "empty", raw: "", wantErr: true},
		{name: "scheme only", raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWebsocketURL(t *testing.T) {
	a := &HTTPServerAdapter{baseURL: "http://localhost:8080"}
	assert.Equal(t, "ws://localhost:8080/api/realtime/decks", a.websocketURL("/api/realtime/decks"))

	a.baseURL = "https://study.example.com"
	assert.Equal(t, "wss://study.example.com/api/realtime/notes", a.websocketURL("/api/realtime/notes"))
}

func TestSetToken_Trims(t *testing.T) {
	a := &HTTPServerAdapter{}
	a.SetToken("  abc  ")
	assert.Equal(t, "abc", a.Token())
}

// ── Ping ────────────────────────────────────────────────────────────────────

func TestPing_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestAdapter(t, srv.URL).Ping(context.Background()))
}

func TestPing_ServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestAdapter(t, srv.URL).Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerUnavailable)
	assert.False(t, IsPermanent(err))
}

func TestPing_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newTestAdapter(t, url).Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, IsPermanent(err))
}

// ── Select ──────────────────────────────────────────────────────────────────

func TestSelect_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/decks", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"d1","user_id":7,"title":"Go"},{"id":"d2","user_id":7,"title":"SQL"}]`))
	}))
	defer srv.Close()

	items, err := newDecks(t, srv.URL).Select(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "d1", items[0].ID)
	assert.Equal(t, "Go", items[0].Title)
	assert.Equal(t, int64(7), items[1].UserID)
}

func TestSelect_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newDecks(t, srv.URL).Select(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsPermanent(err))
}

func TestSelect_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := newDecks(t, srv.URL).Select(context.Background())
	assert.Error(t, err)
}

// ── Insert / Update / Delete ────────────────────────────────────────────────

func TestInsert_SendsBodyAndHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/decks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, utils.HashString(string(body), testHashKey), r.Header.Get(HashHeader))

		var got models.Deck
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Go", got.Title)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"srv-1","user_id":7,"title":"Go"}`))
	}))
	defer srv.Close()

	stored, err := newDecks(t, srv.URL).Insert(context.Background(), &models.Deck{Title: "Go"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "srv-1", stored.ID)
}

func TestInsert_NoHashWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(HashHeader))
		_, _ = w.Write([]byte(`{"id":"srv-1"}`))
	}))
	defer srv.Close()

	a, err := NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: srv.URL}, config.ClientApp{}, logger.Nop())
	require.NoError(t, err)

	_, err = NewHTTPCollection[*models.Deck](a, models.CollectionDecks, nil).Insert(context.Background(), &models.Deck{})
	require.NoError(t, err)
}

func TestInsert_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("title is required"))
	}))
	defer srv.Close()

	_, err := newDecks(t, srv.URL).Insert(context.Background(), &models.Deck{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Contains(t, err.Error(), "title is required")
}

func TestUpdate_PatchesItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/decks/d1", r.URL.Path)

		var patch map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, map[string]any{"title": "Renamed"}, patch)

		_, _ = w.Write([]byte(`{"id":"d1","title":"Renamed"}`))
	}))
	defer srv.Close()

	stored, err := newDecks(t, srv.URL).Update(context.Background(), "d1", models.Patch{"title": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
}

func TestUpdate_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := newDecks(t, srv.URL).Update(context.Background(), "d1", models.Patch{"title": "x"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDelete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/decks/d1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, newDecks(t, srv.URL).Delete(context.Background(), "d1"))
}

func TestDelete_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := newDecks(t, srv.URL).Delete(context.Background(), "d1")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── IsPermanent ─────────────────────────────────────────────────────────────

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "bad request", err: ErrBadRequest, want: true},
		{name: "unauthorized", err: ErrUnauthorized, want: true},
		{name: "forbidden", err: ErrForbidden, want: true},
		{name: "not found wrapped", err: errors.Join(errors.New("ctx"), ErrNotFound), want: true},
		{name: "conflict", err: ErrConflict, want: true},
		{name: "internal", err: ErrInternalServerError, want: false},
		{name: "unavailable", err: ErrServerUnavailable, want: false},
		{name: "network", err: mapTransportError("select", errors.New("refused")), want: false},
		{name: "other", err: errors.New("http 429: Too Many Requests"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}
