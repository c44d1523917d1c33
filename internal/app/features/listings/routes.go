// internal/app/features/listings/routes.go
package listings

import (
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /listings.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeIndex)
	r.Get("/{id}", h.ServeShow)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}", h.HandleUpdate)
		pr.Put("/{id}", h.HandleUpdate)

		pr.Post("/{id}/delete", h.HandleDelete)
		pr.Delete("/{id}", h.HandleDelete)

		pr.Post("/{id}/report", h.HandleReport)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(string(models.RoleAdmin)))
		ar.Post("/{id}/status", h.HandleStatus)
	})

	return r
}
