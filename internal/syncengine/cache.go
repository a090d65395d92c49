// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncengine

import (
	"slices"
	"sync"
	"time"
)

// CacheEntry is the state of a [CacheStore] at one point in time.
type CacheEntry[T Entity] struct {
	Items     []T
	Timestamp time.Time
	Version   int64
}

// CacheStore holds the client-side snapshot of one collection. It is the
// only state consumers read.
//
// Version grows by one on every write. Timestamp moves only when the whole
// snapshot is replaced with fresh remote data, so optimistic writes never
// make stale data look fresh.
type CacheStore[T Entity] struct {
	mu        sync.RWMutex
	items     []T
	timestamp time.Time
	version   int64
	now       func() time.Time
	changes   chan struct{}
}

// NewCacheStore returns an empty store. now is the clock used for
// timestamps; time.Now when nil.
func NewCacheStore[T Entity](now func() time.Time) *CacheStore[T] {
	if now == nil {
		now = time.Now
	}
	return &CacheStore[T]{
		now:     now,
		changes: make(chan struct{}, 1),
	}
}

// Read returns a copy of the current items.
func (s *CacheStore[T]) Read() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Entry returns a copy of the full cache state.
func (s *CacheStore[T]) Entry() CacheEntry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CacheEntry[T]{
		Items:     slices.Clone(s.items),
		Timestamp: s.timestamp,
		Version:   s.version,
	}
}

// Replace swaps in a freshly fetched snapshot and stamps it with now.
func (s *CacheStore[T]) Replace(items []T) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	s.timestamp = s.now()
	s.version++
	s.mu.Unlock()
	s.signal()
}

// Write stores an optimistically modified list. The timestamp is kept.
func (s *CacheStore[T]) Write(items []T) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	s.version++
	s.mu.Unlock()
	s.signal()
}

// Apply runs fn on a copy of the items and writes its result, holding the
// lock for the whole read-modify-write. fn returning false leaves the store
// untouched.
func (s *CacheStore[T]) Apply(fn func(items []T) ([]T, bool)) bool {
	s.mu.Lock()
	next, changed := fn(slices.Clone(s.items))
	if changed {
		s.items = next
		s.version++
	}
	s.mu.Unlock()

	if changed {
		s.signal()
	}
	return changed
}

// Restore loads a persisted entry as is, keeping its timestamp and version.
func (s *CacheStore[T]) Restore(entry CacheEntry[T]) {
	s.mu.Lock()
	s.items = slices.Clone(entry.Items)
	s.timestamp = entry.Timestamp
	s.version = entry.Version
	s.mu.Unlock()
	s.signal()
}

// IsFresh reports whether the last replacement happened less than timeout
// ago. A store that was never filled is not fresh.
func (s *CacheStore[T]) IsFresh(timeout time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.timestamp.IsZero() {
		return false
	}
	return s.now().Sub(s.timestamp) < timeout
}

// HasSnapshot reports whether the store ever held remote data.
func (s *CacheStore[T]) HasSnapshot() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.timestamp.IsZero()
}

// Version returns the current write counter.
func (s *CacheStore[T]) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Changes delivers a signal after writes. Signals coalesce: a reader that
// falls behind sees one pending signal, not one per write.
func (s *CacheStore[T]) Changes() <-chan struct{} {
	return s.changes
}

func (s *CacheStore[T]) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
