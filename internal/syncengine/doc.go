// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package syncengine implements the client side of server-first
// synchronization.
//
// A [Controller] is instantiated once per entity collection. Mutations are
// applied to its [CacheStore] immediately and then confirmed against the
// [RemoteStore]; when that is not possible they are deferred in an
// [OperationQueue] and replayed later. A [NetworkMonitor] and a
// [RealtimeListener] re-enter the controller from the side to drain the
// queue on reconnect and to refresh on remote changes.
//
// All remote steps of one controller run on a single writer goroutine, so
// overlapping calls complete in the order they were made.
package syncengine
