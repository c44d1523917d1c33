package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := HTTPRequests.WithLabelValues(http.MethodGet, "/listings/{id}", "404")
	before := promtest.ToFloat64(c)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/"+id, nil))
	}

	if got := promtest.ToFloat64(c) - before; got != 3 {
		t.Errorf("counter delta = %v, want 3", got)
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	c := HTTPRequests.WithLabelValues(http.MethodGet, "/health", "200")
	before := promtest.ToFloat64(c)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := promtest.ToFloat64(c) - before; got != 1 {
		t.Errorf("counter delta = %v, want 1", got)
	}
}

func TestRoutePattern_Unmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := RoutePattern(req); got != "unmatched" {
		t.Errorf("RoutePattern = %q", got)
	}
}

func TestHandler_ExposesDomainMetrics(t *testing.T) {
	ComplaintsCreated.Inc()
	TrackingAppends.WithLabelValues("Verified").Inc()
	EndorsementToggles.WithLabelValues(DirectionAdded).Inc()
	Logins.WithLabelValues(LoginSuccess).Inc()
	PendingQueue.Set(4)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"nagarseva_complaints_created_total",
		"nagarseva_tracking_appends_total",
		"nagarseva_endorsement_toggles_total",
		"nagarseva_logins_total",
		"nagarseva_pending_queue_length 4",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}
