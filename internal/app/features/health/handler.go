package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Redis  *redis.Client // nil when the limiter uses the in-memory store
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. rdb may be nil.
func NewHandler(client *mongo.Client, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Redis:  rdb,
		Log:    logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Limiter  string `json:"limiter"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "limiter":"memory" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
//
// A Redis outage is reported but does not fail the check; the limiter
// fails open.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Limiter:  "memory",
	}

	if h.Redis != nil {
		resp.Limiter = "redis"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			h.Log.Warn("health-check: redis ping failed", zap.Error(err))
			resp.Limiter = "redis-unavailable"
		}
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
