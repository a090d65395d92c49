// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrNoUserInContext.Error(), http.StatusUnauthorized)
		return
	}

	docs, err := h.services.RecordService.List(r.Context(), userID, chi.URLParam(r, "collection"))
	if err != nil {
		writeError(w, r, "*Handler.listRecords", err)
		return
	}
	if docs == nil {
		docs = []service.Document{}
	}

	_ = utils.WriteJSON(w, docs, http.StatusOK)
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrNoUserInContext.Error(), http.StatusUnauthorized)
		return
	}

	doc, ok := decodeDocument(w, r, "*Handler.createRecord")
	if !ok {
		return
	}

	stored, err := h.services.RecordService.Create(r.Context(), userID, chi.URLParam(r, "collection"), doc)
	if err != nil {
		writeError(w, r, "*Handler.createRecord", err)
		return
	}

	_ = utils.WriteJSON(w, stored, http.StatusCreated)
}

func (h *Handler) patchRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrNoUserInContext.Error(), http.StatusUnauthorized)
		return
	}

	patch, ok := decodeDocument(w, r, "*Handler.patchRecord")
	if !ok {
		return
	}

	stored, err := h.services.RecordService.Patch(r.Context(), userID,
		chi.URLParam(r, "collection"), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, "*Handler.patchRecord", err)
		return
	}

	_ = utils.WriteJSON(w, stored, http.StatusOK)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrNoUserInContext.Error(), http.StatusUnauthorized)
		return
	}

	err := h.services.RecordService.Delete(r.Context(), userID,
		chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "*Handler.deleteRecord", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeDocument reads a JSON object body. It answers 400 itself on failure.
func decodeDocument(w http.ResponseWriter, r *http.Request, funcName string) (service.Document, bool) {
	var doc service.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc == nil {
		logger.FromRequest(r).Err(err).Str("func", funcName).Msg("invalid JSON body")
		http.Error(w, "request body must be a JSON object", http.StatusBadRequest)
		return nil, false
	}
	return doc, true
}
