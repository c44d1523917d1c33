// internal/app/features/citystats/routes.go
package citystats

import "github.com/go-chi/chi/v5"

// Routes mounts under /api.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/city-stats", h.ServeCityStats)
	return r
}
