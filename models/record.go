// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempIDPrefix marks identifiers assigned on the client before the remote
// store has confirmed a create.
const TempIDPrefix = "temp_"

// Record is the set of columns every synchronized entity carries. Concrete
// entities embed it and are handled through pointer types so that
// [Record.GetRecord] is part of their method set.
type Record struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetRecord returns the embedded record so generic code can read and stamp
// ids and timestamps without knowing the concrete entity type.
func (r *Record) GetRecord() *Record {
	return r
}

// NewTempID returns a fresh client-side identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was assigned by [NewTempID].
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
