package http

import (
	"net/http"

	"github.com/MKhiriev/go-study-sync/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(serverVersion))
}

// health is the reachability check used by the client's network monitor.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	info := h.services.AppInfoService
	_ = utils.WriteJSON(w, map[string]string{
		"status":  "ok",
		"version": info.GetAppVersion(r.Context()),
		"uptime":  info.Uptime().String(),
	}, http.StatusOK)
}
