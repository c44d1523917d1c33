package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/health"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Limiter  string `json:"limiter"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), nil, zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}

	resp := decode(t, rec)
	if resp.Status != "ok" || resp.Database != "connected" || resp.Limiter != "memory" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestServe_RedisReported(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	handler := health.NewHandler(db.Client(), rdb, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))
	if resp := decode(t, rec); resp.Limiter != "redis" {
		t.Errorf("limiter = %q, want redis", resp.Limiter)
	}

	mr.Close()
	rec = httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("redis outage should not fail health, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp.Limiter != "redis-unavailable" {
		t.Errorf("limiter = %q, want redis-unavailable", resp.Limiter)
	}
}
