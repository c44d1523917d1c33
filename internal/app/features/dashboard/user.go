// internal/app/features/dashboard/user.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeUser handles GET /user/dashboard: the signed-in user's own
// complaints, newest first.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := authz.Principal(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout())
	defer cancel()

	mine, err := h.Listings.ListByAuthor(ctx, uid)
	if err != nil {
		h.Log.Error("load user dashboard failed", zap.String("user_id", uid.Hex()), zap.Error(err))
		h.flashError(w, r, "Unable to load your dashboard.")
		http.Redirect(w, r, "/listings", http.StatusSeeOther)
		return
	}

	base := viewdata.NewBaseVM(r, "My complaints", "/listings")
	h.Log.Debug("user dashboard served", zap.String("user", base.UserName), zap.Int("complaints", len(mine)))

	templates.Render(w, r, "user_dashboard", userData{
		BaseVM:     base,
		Complaints: toRows(mine),
	})
}
