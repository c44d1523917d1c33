// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	metricsstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/metrics"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/metrics"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type adminData struct {
	viewdata.BaseVM

	Pending     []complaintRow
	Authorities []models.Authority
	Statuses    []models.TrackingStatus

	ComplaintsCount  int64
	ResolvedCount    int64
	CitizensCount    int64
	AdminsCount      int64
	AuthoritiesCount int64
}

// ServeAdmin handles GET /admin/dashboard: complaints awaiting verification
// (newest first) and the authority directory sorted by city then name.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout())
	defer cancel()

	pending, err := h.Listings.PendingAdminQueue(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load pending queue failed", err, "A database error occurred.", "/listings")
		return
	}
	auths, err := h.Authorities.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list authorities failed", err, "A database error occurred.", "/listings")
		return
	}
	metrics.PendingQueue.Set(float64(len(pending)))

	counts := metricsstore.FetchDashboardCounts(ctx, h.DB)

	base := viewdata.NewBaseVM(r, "Admin Dashboard", "/listings")
	data := adminData{
		BaseVM:           base,
		Pending:          toRows(pending),
		Authorities:      auths,
		Statuses:         models.TrackingStatuses,
		ComplaintsCount:  counts.Complaints,
		ResolvedCount:    counts.Resolved,
		CitizensCount:    counts.Citizens,
		AdminsCount:      counts.Admins,
		AuthoritiesCount: counts.Authorities,
	}

	h.Log.Debug("admin dashboard served", zap.String("user", base.UserName), zap.Int("pending", len(pending)))

	templates.Render(w, r, "admin_dashboard", data)
}
