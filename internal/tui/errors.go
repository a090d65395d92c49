// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-study-sync/internal/adapter"
)

// humanizeError shortens transport failures to something a user can act on.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, adapter.ErrNetwork) || errors.Is(err, adapter.ErrServerUnavailable) {
		return "server is unreachable, changes are kept locally"
	}
	if errors.Is(err, adapter.ErrUnauthorized) {
		return "the server rejected the token"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "server is unreachable, changes are kept locally"
	}

	return err.Error()
}
