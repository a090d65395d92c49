// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sync"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
)

const defaultChangeBuffer = 64

// ChangeSubscription receives the change events of one owner's collection.
type ChangeSubscription struct {
	id         uint64
	UserID     int64
	Collection string

	ch chan models.ChangeEvent
}

// Events is closed when the subscription is removed from the hub.
func (s *ChangeSubscription) Events() <-chan models.ChangeEvent {
	return s.ch
}

// ChangeHub fans committed changes out to realtime subscribers. Delivery is
// best effort: a subscriber whose buffer is full misses the event.
type ChangeHub struct {
	mu         sync.RWMutex
	subs       map[uint64]*ChangeSubscription
	nextID     uint64
	bufferSize int

	logger *logger.Logger
}

func NewChangeHub(bufferSize int, log *logger.Logger) *ChangeHub {
	if bufferSize <= 0 {
		bufferSize = defaultChangeBuffer
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ChangeHub{
		subs:       make(map[uint64]*ChangeSubscription),
		bufferSize: bufferSize,
		logger:     log,
	}
}

func (h *ChangeHub) Subscribe(userID int64, collection string) *ChangeSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &ChangeSubscription{
		id:         h.nextID,
		UserID:     userID,
		Collection: collection,
		ch:         make(chan models.ChangeEvent, h.bufferSize),
	}
	h.subs[sub.id] = sub

	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is safe.
func (h *ChangeHub) Unsubscribe(sub *ChangeSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.ch)
}

// Publish implements ChangePublisher. Events only reach subscribers of the
// same owner and collection.
func (h *ChangeHub) Publish(ev models.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.UserID != ev.UserID || sub.Collection != ev.Collection {
			continue
		}

		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn().
				Str("func", "ChangeHub.Publish").
				Str("collection", ev.Collection).
				Int64("user_id", ev.UserID).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

func (h *ChangeHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops every subscriber. Realtime feeds see their channel closed and
// end the connection.
func (h *ChangeHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
