// Package metrics holds the Prometheus instruments for NagarSeva.
//
// Instruments are registered on the default registry at init and exposed at
// GET /metrics through Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ComplaintsCreated counts successful complaint submissions.
var ComplaintsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nagarseva_complaints_created_total",
	Help: "Complaints submitted.",
})

// TrackingAppends counts status updates by the status appended.
var TrackingAppends = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nagarseva_tracking_appends_total",
	Help: "Tracking entries appended, by status.",
}, []string{"status"})

// EndorsementToggles counts endorsement flips by direction (added|removed).
var EndorsementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nagarseva_endorsement_toggles_total",
	Help: "Endorsement toggles, by direction.",
}, []string{"direction"})

// Logins counts login attempts by result (success|failure|locked|role_mismatch).
var Logins = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nagarseva_logins_total",
	Help: "Login attempts, by result.",
}, []string{"result"})

// PendingQueue is the admin work-queue length, refreshed when the admin
// dashboard is served.
var PendingQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "nagarseva_pending_queue_length",
	Help: "Complaints awaiting admin verification as of the last dashboard view.",
})

// HTTPRequests counts requests by method, route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nagarseva_http_requests_total",
	Help: "HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks request latency by method and route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "nagarseva_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// Endorsement direction labels.
const (
	DirectionAdded   = "added"
	DirectionRemoved = "removed"
)

// Login result labels.
const (
	LoginSuccess      = "success"
	LoginFailure      = "failure"
	LoginLocked       = "locked"
	LoginRoleMismatch = "role_mismatch"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency. Routes are labelled by
// their chi pattern so ids do not blow up cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := RoutePattern(r)
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RoutePattern returns the matched chi pattern, or "unmatched".
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
