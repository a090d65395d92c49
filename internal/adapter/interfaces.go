// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer access to the study-sync server.
//
// [HTTPServerAdapter] owns the shared resty client, the bearer token and the
// request integrity key. [HTTPCollection] binds it to one collection and
// implements [syncengine.RemoteStore] over REST plus a websocket change feed.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter is the connection-level view of the server used by the
// client services: a reachability check and the bearer token.
type ServerAdapter interface {
	// Ping checks that the server answers its health endpoint. Any error
	// means the server is considered unreachable.
	Ping(ctx context.Context) error

	// SetToken stores the bearer token that will be attached to all
	// subsequent requests and websocket dials.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter.
	Token() string
}
