package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/novanote/novanote/internal/api"
	"github.com/novanote/novanote/internal/api/handlers"
	"github.com/novanote/novanote/internal/api/middleware"
	"github.com/novanote/novanote/internal/extract"
)

const (
	maxBodyBytes   int64 = 5 * 1024 * 1024
	maxUploadBytes int64 = extract.MaxPDFBytes + 1024*1024
)

type RouterConfig struct {
	AuthValidator     middleware.AuthValidator
	AuthHandler       *handlers.AuthHandler
	CollectionHandler *handlers.CollectionHandler
	ItemHandler       *handlers.ItemHandler
	ChatHandler       *handlers.ChatHandler
	LimitsHandler     *handlers.LimitsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(middleware.MaxBodyBytes(maxBodyBytes)).Post("/register", cfg.AuthHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

			r.With(middleware.MaxBodyBytes(maxUploadBytes)).Post("/collections/{id}/items/pdf", cfg.ItemHandler.AddPDF)

			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodyBytes(maxBodyBytes))

				r.Get("/me", cfg.AuthHandler.Me)
				r.Get("/limits", cfg.LimitsHandler.Get)

				r.Post("/collections", cfg.CollectionHandler.Create)
				r.Get("/collections", cfg.CollectionHandler.List)
				r.Get("/collections/{id}", cfg.CollectionHandler.Get)
				r.Patch("/collections/{id}", cfg.CollectionHandler.Update)
				r.Delete("/collections/{id}", cfg.CollectionHandler.Delete)

				r.Get("/collections/{id}/items", cfg.ItemHandler.List)
				r.Post("/collections/{id}/items/text", cfg.ItemHandler.AddText)
				r.Post("/collections/{id}/items/link", cfg.ItemHandler.AddLink)
				r.Post("/collections/{id}/index", cfg.ItemHandler.IndexText)
				r.Post("/collections/{id}/chat", cfg.ChatHandler.Ask)

				r.Get("/items/{id}", cfg.ItemHandler.Get)
				r.Delete("/items/{id}", cfg.ItemHandler.Delete)
				r.Post("/items/{id}/index", cfg.ItemHandler.Reindex)
				r.Get("/items/{id}/file", cfg.ItemHandler.Download)
			})
		})
	})

	return r
}
