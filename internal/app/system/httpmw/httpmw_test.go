package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecurityHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	SecurityHeaders(false)(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": ContentSecurityPolicy,
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should not be set when disabled")
	}

	rec = httptest.NewRecorder()
	SecurityHeaders(true)(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing when enabled")
	}
}

func TestSuspicious(t *testing.T) {
	tests := []struct {
		status int
		dur    time.Duration
		want   bool
	}{
		{200, time.Millisecond, false},
		{303, time.Second, false},
		{400, time.Millisecond, true},
		{500, time.Millisecond, true},
		{200, 6 * time.Second, true},
		{200, SlowRequest, false},
	}
	for _, tc := range tests {
		if got := Suspicious(tc.status, tc.dur); got != tc.want {
			t.Errorf("Suspicious(%d, %v) = %v, want %v", tc.status, tc.dur, got, tc.want)
		}
	}
}

func TestRequestLogger_FlagsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/missing", nil))

	warns := logs.FilterMessage("suspicious request").All()
	if len(warns) != 1 {
		t.Fatalf("got %d suspicious entries, want 1", len(warns))
	}
	if got := warns[0].ContextMap()["status"]; got != int64(404) {
		t.Errorf("status field = %v", got)
	}
	if n := logs.FilterMessage("request").Len(); n != 1 {
		t.Errorf("got %d debug entries, want 1", n)
	}
}
