package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)

	// the websocket needs the raw connection, so it skips the wrapping
	// middlewares
	router.Get("/api/ws", h.sync.ServeHTTP)

	router.Group(func(r chi.Router) {
		r.Use(h.withLogging)
		r.Get("/api/version", h.getServerVersion)

		r.Group(func(r chi.Router) {
			r.Use(h.auth, withGZip)
			r.Route("/api/documents/{docID}/acl", func(r chi.Router) {
				r.Get("/", h.getACL)
				r.Put("/{identity}", h.grant)
				r.Delete("/{identity}", h.revoke)
			})
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
