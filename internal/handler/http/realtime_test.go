package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-study-sync/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRealtime(t *testing.T, srv *httptest.Server, collection string, userID int64) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/realtime/" + collection
	header := http.Header{}
	header.Set("Authorization", bearer(t, userID))
	return websocket.DefaultDialer.Dial(url, header)
}

// waitSubscribers polls until the hub has n subscribers.
func waitSubscribers(t *testing.T, h *Handler, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.services.ChangeHub.Count() == n
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRealtime_StreamsOwnerEvents(t *testing.T) {
	h := newTestHandler(t, &fakeRecordService{})
	srv := httptest.NewServer(h.Init())
	defer srv.Close()

	conn, _, err := dialRealtime(t, srv, models.CollectionDecks, testUserID)
	require.NoError(t, err)
	defer conn.Close()

	waitSubscribers(t, h, 1)

	// neither another owner nor another collection reaches this feed
	h.services.ChangeHub.Publish(models.ChangeEvent{Collection: models.CollectionDecks, Kind: models.ChangeInsert, ID: "x", UserID: testUserID + 1})
	h.services.ChangeHub.Publish(models.ChangeEvent{Collection: models.CollectionNotes, Kind: models.ChangeInsert, ID: "y", UserID: testUserID})
	h.services.ChangeHub.Publish(models.ChangeEvent{Collection: models.CollectionDecks, Kind: models.ChangeUpdate, ID: "d1", UserID: testUserID})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev models.ChangeEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.ChangeUpdate, ev.Kind)
	assert.Equal(t, "d1", ev.ID)
	assert.Equal(t, models.CollectionDecks, ev.Collection)
}

func TestRealtime_UnsubscribesOnClientClose(t *testing.T) {
	h := newTestHandler(t, &fakeRecordService{})
	srv := httptest.NewServer(h.Init())
	defer srv.Close()

	conn, _, err := dialRealtime(t, srv, models.CollectionFlashcards, testUserID)
	require.NoError(t, err)
	waitSubscribers(t, h, 1)

	require.NoError(t, conn.Close())

	waitSubscribers(t, h, 0)
}

func TestRealtime_SendsPings(t *testing.T) {
	h := newTestHandler(t, &fakeRecordService{})
	h.pingInterval = 20 * time.Millisecond
	srv := httptest.NewServer(h.Init())
	defer srv.Close()

	conn, _, err := dialRealtime(t, srv, models.CollectionNotes, testUserID)
	require.NoError(t, err)
	defer conn.Close()

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})
	// control frames are only processed while reading
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(5 * time.Second):
		t.Fatal("no ping received")
	}
}

func TestRealtime_UnknownCollection(t *testing.T) {
	h := newTestHandler(t, &fakeRecordService{})
	srv := httptest.NewServer(h.Init())
	defer srv.Close()

	_, resp, err := dialRealtime(t, srv, "users", testUserID)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRealtime_Unauthorized(t *testing.T) {
	h := newTestHandler(t, &fakeRecordService{})
	srv := httptest.NewServer(h.Init())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/realtime/decks"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
