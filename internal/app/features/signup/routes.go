// internal/app/features/signup/routes.go
package signup

import (
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /signup. limiter, when set, throttles POSTs per IP.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSignup)
	if limiter != nil {
		r.With(limiter.Middleware(h.Log)).Post("/", h.HandleSignup)
	} else {
		r.Post("/", h.HandleSignup)
	}
	return r
}
