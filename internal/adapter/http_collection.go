// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/syncengine"
	"github.com/MKhiriev/go-study-sync/models"
)

// HTTPCollection is the REST binding of one collection. It implements
// [syncengine.RemoteStore].
type HTTPCollection[T syncengine.Entity] struct {
	server     *HTTPServerAdapter
	collection string
	logger     *logger.Logger
}

var _ syncengine.RemoteStore[*models.Deck] = (*HTTPCollection[*models.Deck])(nil)

// NewHTTPCollection binds server to collection. Rows are served under
// /api/{collection}.
func NewHTTPCollection[T syncengine.Entity](server *HTTPServerAdapter, collection string, log *logger.Logger) *HTTPCollection[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &HTTPCollection[T]{
		server:     server,
		collection: collection,
		logger:     log,
	}
}

func (c *HTTPCollection[T]) path() string {
	return "/api/" + url.PathEscape(c.collection)
}

func (c *HTTPCollection[T]) itemPath(id string) string {
	return c.path() + "/" + url.PathEscape(id)
}

// Select implements [syncengine.RemoteStore]. GET /api/{collection}.
func (c *HTTPCollection[T]) Select(ctx context.Context) ([]T, error) {
	resp, err := c.server.authedRequest(ctx).Get(c.path())
	if err != nil {
		return nil, mapTransportError("select "+c.collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var items []T
	if err = json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", c.collection, err)
	}

	c.logger.Debug().Str("func", "HTTPCollection.Select").
		Str("collection", c.collection).
		Int("rows", len(items)).
		Msg("selected rows")

	return items, nil
}

// Insert implements [syncengine.RemoteStore]. POST /api/{collection}; the
// server responds with the stored row.
func (c *HTTPCollection[T]) Insert(ctx context.Context, item T) (T, error) {
	var stored T

	req, err := c.server.jsonRequest(ctx, item)
	if err != nil {
		return stored, err
	}
	resp, err := req.Post(c.path())
	if err != nil {
		return stored, mapTransportError("insert into "+c.collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return stored, err
	}

	if err = json.Unmarshal(resp.Body(), &stored); err != nil {
		return stored, fmt.Errorf("decode inserted %s row: %w", c.collection, err)
	}

	return stored, nil
}

// Update implements [syncengine.RemoteStore]. PATCH /api/{collection}/{id}.
func (c *HTTPCollection[T]) Update(ctx context.Context, id string, patch models.Patch) (T, error) {
	var stored T

	req, err := c.server.jsonRequest(ctx, patch)
	if err != nil {
		return stored, err
	}
	resp, err := req.Patch(c.itemPath(id))
	if err != nil {
		return stored, mapTransportError("update "+c.collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return stored, err
	}

	if err = json.Unmarshal(resp.Body(), &stored); err != nil {
		return stored, fmt.Errorf("decode updated %s row: %w", c.collection, err)
	}

	return stored, nil
}

// Delete implements [syncengine.RemoteStore]. DELETE /api/{collection}/{id}.
func (c *HTTPCollection[T]) Delete(ctx context.Context, id string) error {
	resp, err := c.server.authedRequest(ctx).Delete(c.itemPath(id))
	if err != nil {
		return mapTransportError("delete from "+c.collection, err)
	}

	return mapHTTPError(resp)
}

// Subscribe implements [syncengine.ChangeSource] over the websocket feed at
// /api/realtime/{collection}.
func (c *HTTPCollection[T]) Subscribe(ctx context.Context, onEvent func(models.ChangeEvent)) (syncengine.Subscription, error) {
	feed := &changeFeed{
		url:        c.server.websocketURL("/api/realtime/" + url.PathEscape(c.collection)),
		token:      c.server.Token,
		collection: c.collection,
		onEvent:    onEvent,
		logger:     c.logger,
	}
	if err := feed.open(ctx); err != nil {
		return nil, err
	}

	return feed, nil
}
