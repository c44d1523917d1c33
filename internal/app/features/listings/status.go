// internal/app/features/listings/status.go
package listings

import (
	"context"
	"net/http"
	"strings"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/htmlsanitize"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/inputval"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/metrics"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// statusInput defines validation rules for the admin status form.
type statusInput struct {
	Status    string `validate:"required,trackingstatus" label:"Status"`
	Notes     string `validate:"max=1000" label:"Notes"`
	Authority string `validate:"max=200" label:"Authority"`
}

// HandleStatus handles POST /listings/{id}/status. It appends one tracking
// entry and, when an authority is chosen, assigns it in the same update.
// The authority must be in the directory.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !authz.CanManageTracking(r) {
		h.ErrLog.LogForbidden(w, r, "status update by non-admin", "Only administrators can update complaint status.", "/listings")
		return
	}
	id, err := listingID(r)
	if err != nil {
		h.ErrLog.RenderAppError(w, r, "bad complaint id", err, "/admin/dashboard")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse status form failed", err, "Invalid form data.", "/admin/dashboard")
		return
	}

	back := urlutil.SafeReturn(r.FormValue("return"), "", "/admin/dashboard")

	in := statusInput{
		Status:    strings.TrimSpace(r.FormValue("newStatus")),
		Notes:     htmlsanitize.StripTags(r.FormValue("notes")),
		Authority: strings.TrimSpace(r.FormValue("assignedAuthority")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.flashError(w, r, res.First())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if in.Authority != "" {
		if _, err := h.Authorities.GetByName(ctx, in.Authority); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				h.flashError(w, r, apperr.Message(err, "Unknown authority."))
				http.Redirect(w, r, back, http.StatusSeeOther)
				return
			}
			h.ErrLog.RenderAppError(w, r, "authority lookup failed", err, "/admin/dashboard")
			return
		}
	}

	status := models.TrackingStatus(in.Status)
	l, err := h.Listings.AppendTracking(ctx, id, status, in.Notes, in.Authority)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			h.flashError(w, r, apperr.Message(err, "Invalid status."))
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.ErrLog.RenderAppError(w, r, "append tracking failed", err, "/admin/dashboard")
		return
	}

	metrics.TrackingAppends.WithLabelValues(string(status)).Inc()
	uid, _, _ := authz.Principal(r)
	h.Log.Info("complaint status updated",
		zap.String("listing_id", id.Hex()),
		zap.String("status", string(status)),
		zap.String("authority", l.AssignedAuthority),
		zap.String("by", uid.Hex()))

	h.flashSuccess(w, r, "Status updated")
	http.Redirect(w, r, back, http.StatusSeeOther)
}
