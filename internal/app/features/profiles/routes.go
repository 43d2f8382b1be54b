// internal/app/features/profiles/routes.go
package profiles

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireSignedIn)

	r.Get("/me", h.ServeMe)
	r.Put("/me", h.HandleUpdateMe)
	r.Get("/{nim}", h.ServeDetail)

	r.With(mw.RequireOrganizer).Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireAdministrator)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{nim}", h.HandleUpdate)
		pr.Delete("/{nim}", h.HandleDelete)
	})
	return r
}
