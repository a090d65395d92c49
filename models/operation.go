// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// OperationKind is the type of a deferred mutation.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// Operation is a mutation that could not be confirmed by the remote store
// yet. Payload holds the full entity for creates and a [Patch] for updates;
// it is empty for deletes.
type Operation struct {
	ID            string          `json:"id"`
	Collection    string          `json:"collection"`
	Kind          OperationKind   `json:"kind"`
	EntityID      string          `json:"entity_id"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt    time.Time       `json:"enqueued_at"`
	RetryCount    int             `json:"retry_count"`
	NextAttemptAt time.Time       `json:"next_attempt_at,omitzero"`
}

// Due reports whether the operation may be attempted at now.
func (o Operation) Due(now time.Time) bool {
	return o.NextAttemptAt.IsZero() || !now.Before(o.NextAttemptAt)
}
