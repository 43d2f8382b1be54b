// internal/app/features/organizers/routes.go
package organizers

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/current", h.ServeCurrent)
	r.With(mw.RequireSignedIn).Post("/", h.HandleCreate)
	return r
}
