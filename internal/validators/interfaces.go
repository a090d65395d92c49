// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks study entities before the server stores them.
//
// A Validator validates one value. Callers may pass field names to restrict
// the check to those fields, which is how partial updates are validated:
// only the keys present in the patch are checked.
package validators

import "context"

// Validator validates obj, optionally restricted to the named fields.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
