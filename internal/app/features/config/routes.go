// internal/app/features/config/routes.go
package config

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLatest)
	r.With(mw.RequireAdministrator).Post("/", h.HandleCreate)
	return r
}
