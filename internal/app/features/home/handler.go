package home

import (
	"context"
	"net/http"

	listingstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/listings"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	Listings *listingstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Listings: listingstore.New(db),
		Log:      logger,
	}
}

type homeData struct {
	viewdata.BaseVM
	ComplaintCount int64
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := homeData{BaseVM: viewdata.NewBaseVM(r, "Welcome", "/")}

	// The count is decoration; the page renders without it.
	n, err := h.Listings.Count(ctx)
	if err != nil {
		h.Log.Warn("home: count complaints", zap.Error(err))
	}
	data.ComplaintCount = n

	templates.Render(w, r, "home", data)
}
