// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/utils"
	"github.com/MKhiriev/go-study-sync/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// realtime upgrades the request to a websocket and streams the owner's
// change events of one collection until either side goes away.
func (h *Handler) realtime(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrNoUserInContext.Error(), http.StatusUnauthorized)
		return
	}

	collection := chi.URLParam(r, "collection")
	if !models.IsKnownCollection(collection) {
		http.Error(w, "unknown collection", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client
		log.Err(err).Str("func", "*Handler.realtime").Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.services.ChangeHub.Subscribe(userID, collection)
	defer h.services.ChangeHub.Unsubscribe(sub)

	log.Debug().Str("collection", collection).Msg("realtime subscriber connected")

	// the client never sends anything but control frames; reading is how we
	// notice it left
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			log.Debug().Str("collection", collection).Msg("realtime subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Warn().Err(err).Str("collection", collection).Msg("failed to push change event")
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Warn().Err(err).Str("collection", collection).Msg("ping failed")
				return
			}
		}
	}
}
