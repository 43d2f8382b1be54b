// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves the token endpoints. It is mounted at the root.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Post("/signin", h.HandleSignin)
	r.Post("/refresh", h.HandleRefresh)
	r.Post("/register", h.HandleRegister)
	r.With(mw.RequireSignedIn).Get("/session", h.ServeSession)
	return r
}
