// internal/app/features/administrators/routes.go
package administrators

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.With(mw.RequireAdministrator).Post("/", h.HandleCreate)
	return r
}
