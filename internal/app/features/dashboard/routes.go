// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /dashboard and dispatches by role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
	})
	return r
}

// UserRoutes mounts under /user.
func UserRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/dashboard", h.ServeUser)
	})
	return r
}

// AdminRoutes mounts under /admin.
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(string(models.RoleAdmin)))
		ar.Get("/dashboard", h.ServeAdmin)
	})
	return r
}
