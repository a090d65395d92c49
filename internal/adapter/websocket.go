// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
)

const (
	reconnectBase = 500 * time.Millisecond
	reconnectCap  = 30 * time.Second
)

// changeFeed is a websocket subscription that redials with exponential
// backoff until it is closed. After every redial it emits one synthetic
// update event, since changes may have been missed while disconnected.
type changeFeed struct {
	url        string
	token      func() string
	collection string
	onEvent    func(models.ChangeEvent)
	logger     *logger.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

func (f *changeFeed) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if token := f.token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, f.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("dial %s change feed: %w", f.collection, ErrUnauthorized)
		}
		return nil, mapTransportError("dial "+f.collection+" change feed", err)
	}

	return conn, nil
}

// open dials once synchronously and starts the read loop.
func (f *changeFeed) open(ctx context.Context) error {
	conn, err := f.dial(ctx)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})
	f.conn = conn

	go f.run(loopCtx, conn)

	return nil
}

func (f *changeFeed) run(ctx context.Context, conn *websocket.Conn) {
	defer close(f.done)

	for {
		f.read(conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}

		next, err := f.redial(ctx)
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Error().Err(err).
					Str("func", "changeFeed.run").
					Str("collection", f.collection).
					Msg("change feed gave up reconnecting")
			}
			return
		}
		if !f.swap(next) {
			_ = next.Close()
			return
		}

		conn = next
		f.onEvent(models.ChangeEvent{
			Collection: f.collection,
			Kind:       models.ChangeUpdate,
			At:         time.Now().UTC(),
		})
	}
}

// read forwards events until the connection fails or is closed.
func (f *changeFeed) read(conn *websocket.Conn) {
	for {
		var ev models.ChangeEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !f.isClosed() {
				f.logger.Warn().Err(err).
					Str("func", "changeFeed.read").
					Str("collection", f.collection).
					Msg("change feed interrupted")
			}
			return
		}

		if ev.Collection == "" {
			ev.Collection = f.collection
		}
		f.onEvent(ev)
	}
}

func (f *changeFeed) redial(ctx context.Context) (*websocket.Conn, error) {
	var conn *websocket.Conn

	backoff := retry.WithCappedDuration(reconnectCap, retry.NewExponential(reconnectBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := f.dial(ctx)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return err
			}
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// swap installs conn unless the feed has been closed meanwhile.
func (f *changeFeed) swap(conn *websocket.Conn) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.conn = conn
	return true
}

func (f *changeFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Done implements [syncengine.Subscription]. It is closed when the read
// loop exits, after Close or once reconnecting was given up.
func (f *changeFeed) Done() <-chan struct{} {
	return f.done
}

// Close implements [syncengine.Subscription]. It stops reconnecting and
// waits for the read loop to exit.
func (f *changeFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	conn := f.conn
	f.mu.Unlock()

	f.cancel()

	var err error
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = conn.Close()
	}
	<-f.done

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
