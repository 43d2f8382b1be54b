// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)

	r.With(mw.RequireSignedIn).Post("/{id}/register", h.HandleRegister)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireOrganizer)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
