// internal/app/features/answers/routes.go
package answers

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.With(mw.RequireSignedIn).Post("/{id}/vote", h.HandleVote)
	return r
}
