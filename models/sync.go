// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncPhase is the coarse state of a collection's synchronization.
type SyncPhase string

const (
	PhaseIdle    SyncPhase = "idle"
	PhaseLoading SyncPhase = "loading"
	PhaseSyncing SyncPhase = "syncing"
	PhaseError   SyncPhase = "error"
)

// SyncStatus is a read-only snapshot of a controller's state.
type SyncStatus struct {
	Phase        SyncPhase  `json:"phase"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	Error        string     `json:"error,omitempty"`
	PendingCount int        `json:"pending_count"`
}

// ChangeKind is the type of a row change reported by the realtime feed.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent describes a single row change in a collection.
type ChangeEvent struct {
	Collection string     `json:"collection"`
	Kind       ChangeKind `json:"kind"`
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	At         time.Time  `json:"at"`
}

// NotificationLevel is the severity of a user-facing notification.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notification is a short user-facing message emitted by the sync engine.
type Notification struct {
	Level      NotificationLevel
	Collection string
	Message    string
}

// Snapshot is a persisted cache state of one collection. Items holds the
// JSON-encoded entity list.
type Snapshot struct {
	Collection string
	Items      []byte
	Version    int64
	FetchedAt  time.Time
}
