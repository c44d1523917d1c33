// internal/app/features/listings/list.go
package listings

import (
	"context"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeIndex handles GET /listings: every complaint, newest first.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Listings.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list complaints failed", err, "A database error occurred.", "/")
		return
	}

	templates.Render(w, r, "listings_index", indexData{
		BaseVM:   viewdata.NewBaseVM(r, "All complaints", "/"),
		Listings: toRows(all),
	})
}
