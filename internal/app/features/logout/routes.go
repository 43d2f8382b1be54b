// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only signed-in users can end a session.
		pr.Use(mw.RequireSignedIn)
		pr.Get("/", h.ServeSignout)
	})

	return r
}
