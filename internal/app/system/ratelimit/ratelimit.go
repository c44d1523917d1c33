// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Limiter allows at most limit hits per key within a fixed window.
// Counters live in the injected Store.
type Limiter struct {
	store  Store
	name   string
	limit  int
	window time.Duration
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// New creates a limiter. name prefixes every key so several limiters can
// share one Store.
func New(store Store, name string, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, name: name, limit: limit, window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := l.store.Incr(ctx, l.name+":"+key, l.window)
	if err != nil {
		return Decision{Allowed: true, Remaining: l.limit}, err
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{Allowed: count <= int64(l.limit), Remaining: remaining}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, l.name+":"+key)
}

// Middleware limits requests per client IP. Over the limit it answers 429
// with a Retry-After header. Store errors are logged and the request is let
// through.
func (l *Limiter) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			d, err := l.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("rate limit store error; allowing request",
					zap.String("limiter", l.name),
					zap.String("ip", ip),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				secs := int(d.RetryAfter.Round(time.Second).Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				logger.Info("rate limit exceeded",
					zap.String("limiter", l.name),
					zap.String("ip", ip),
					zap.String("path", r.URL.Path))
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr. Forwarding headers are
// ignored here: they are client-controlled unless a trusted proxy set them,
// and httpmw.TrustedRealIP rewrites RemoteAddr for exactly that case.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
