// internal/app/features/citystats/handler.go
package citystats

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/queries/cityqueries"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the resolved-by-city JSON used by the landing page chart.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeCityStats handles GET /api/city-stats. The body is a JSON array of
// {"city", "count"} objects, highest count first.
func (h *Handler) ServeCityStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	counts, err := cityqueries.ResolvedCountsByCity(ctx, h.DB)
	if err != nil {
		h.Log.Error("city stats aggregation failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "unable to load city statistics"})
		return
	}

	_ = json.NewEncoder(w).Encode(counts)
}
