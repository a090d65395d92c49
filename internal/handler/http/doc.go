// Package http implements the REST and websocket transport of the server.
//
// Every collection is served under /api/{collection}. Changes committed
// through the REST routes are pushed to websocket subscribers of
// /api/realtime/{collection}. Authentication, request tracing, access
// logging, compression and body integrity checks are middlewares applied
// before a request reaches the service layer.
package http
