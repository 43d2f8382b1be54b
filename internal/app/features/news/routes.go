// internal/app/features/news/routes.go
package news

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/categories", h.ServeCategories)
	r.Get("/{slug}", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireOrganizer)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{slug}", h.HandleUpdate)
		pr.Get("/{slug}/publish", h.HandlePublish)
	})
	return r
}
