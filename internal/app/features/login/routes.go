// internal/app/features/login/routes.go
package login

import (
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /login. limiter, when set, throttles POSTs per IP.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	if limiter != nil {
		r.With(limiter.Middleware(h.Log)).Post("/", h.HandleLoginPost)
	} else {
		r.Post("/", h.HandleLoginPost)
	}
	return r
}
