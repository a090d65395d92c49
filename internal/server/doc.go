// Package server runs the HTTP transport of the sync server.
//
// It owns the listener lifecycle: startup, signal handling and graceful
// shutdown. Open websocket feeds are closed when the change hub drops its
// subscribers.
package server
