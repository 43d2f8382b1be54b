// internal/app/features/questions/routes.go
package questions

import (
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/vote", h.HandleVote)
		pr.Post("/{id}/answers", h.HandleAddAnswer)
		pr.Put("/{id}/answers/{answerId}", h.HandleUpdateAnswer)
		pr.Delete("/{id}/answers/{answerId}", h.HandleDeleteAnswer)
	})
	return r
}
