package syncengine

import "errors"

var (
	// ErrEntityNotFound is returned by Update and Remove when the id is not
	// present in the cache.
	ErrEntityNotFound = errors.New("entity not found in cache")
	// ErrNilEntity is returned by Create when the draft is nil.
	ErrNilEntity = errors.New("entity is nil")
	// ErrControllerClosed is returned when a call reaches a closed controller.
	ErrControllerClosed = errors.New("sync controller is closed")
	// ErrUnknownOperation is returned when a queued operation has a kind
	// the controller cannot replay.
	ErrUnknownOperation = errors.New("unknown operation kind")
)
