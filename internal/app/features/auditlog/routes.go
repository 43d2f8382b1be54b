// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/audit" from bootstrap). Any signed-in user may read their
// own history; the full log is for administrators.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)
		pr.Get("/me", h.ServeMine)
		pr.With(mw.RequireAdministrator).Get("/", h.ServeList)
	})

	return r
}
