// internal/app/features/listings/report.go
package listings

import (
	"context"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/metrics"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleReport handles POST /listings/{id}/report. Each call flips the
// signed-in user's endorsement; authors may endorse their own complaint.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := authz.Principal(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "endorse without a valid user id", "You must be signed in first!", "/listings")
		return
	}
	id, err := listingID(r)
	if err != nil {
		h.ErrLog.RenderAppError(w, r, "bad complaint id", err, "/listings")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, err := h.Listings.ToggleEndorsement(ctx, id, uid)
	if err != nil {
		h.ErrLog.RenderAppError(w, r, "toggle endorsement failed", err, "/listings")
		return
	}

	direction, msg := metrics.DirectionRemoved, "Your report was withdrawn."
	if l.HasEndorsed(uid) {
		direction, msg = metrics.DirectionAdded, "Thanks for reporting this issue."
	}
	metrics.EndorsementToggles.WithLabelValues(direction).Inc()
	h.Log.Debug("endorsement toggled",
		zap.String("listing_id", id.Hex()),
		zap.String("user_id", uid.Hex()),
		zap.String("direction", direction),
		zap.Int("count", l.EndorsementCount()))

	h.flashSuccess(w, r, msg)
	http.Redirect(w, r, "/listings/"+id.Hex(), http.StatusSeeOther)
}
