// internal/app/features/listings/delete.go
package listings

import (
	"context"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles POST /listings/{id}/delete (and DELETE /listings/{id}).
// The author or an admin may delete. The stored photo is released afterwards;
// a failed release is logged and does not fail the delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	l, ok := h.loadListing(ctx, w, r)
	if !ok {
		return
	}
	if !authz.CanDeleteListing(r, l) {
		h.ErrLog.LogForbidden(w, r, "delete complaint: not author or admin", notOwnerMsg, "/listings/"+l.ID.Hex())
		return
	}

	deleted, err := h.Listings.Delete(ctx, l.ID)
	if err != nil {
		h.ErrLog.RenderAppError(w, r, "delete complaint failed", err, "/listings")
		return
	}
	h.releasePhoto(ctx, deleted.ImageKey)

	uid, role, _ := authz.Principal(r)
	h.Log.Info("complaint deleted",
		zap.String("listing_id", deleted.ID.Hex()),
		zap.String("by", uid.Hex()),
		zap.String("role", string(role)))

	h.flashSuccess(w, r, "Complaint successfully deleted.")
	http.Redirect(w, r, "/listings", http.StatusSeeOther)
}
