// internal/app/features/posts/routes.go
package posts

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{slug}", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireOrganizer)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{slug}", h.HandleUpdate)
		pr.Delete("/{slug}", h.HandleDelete)
		pr.Get("/{slug}/publish", h.HandlePublish)
	})
	return r
}
