package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
		r.Get("/api/version", h.getServerVersion)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		// websocket upgrades need the raw connection, so no gzip here
		r.Get("/api/realtime/{collection}", h.realtime)

		r.Group(func(r chi.Router) {
			r.Use(withGZip, h.checkHash)

			r.Get("/api/{collection}", h.listRecords)
			r.Post("/api/{collection}", h.createRecord)
			r.Patch("/api/{collection}/{id}", h.patchRecord)
			r.Delete("/api/{collection}/{id}", h.deleteRecord)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
