// internal/app/features/listings/show.go
package listings

import (
	"context"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeShow handles GET /listings/{id}.
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, ok := h.loadListing(ctx, w, r)
	if !ok {
		return
	}

	author := "Unknown"
	names, err := h.Users.UsernamesByID(ctx, []primitive.ObjectID{l.AuthorID})
	if err != nil {
		h.Log.Warn("resolve author name failed", zap.String("listing_id", l.ID.Hex()), zap.Error(err))
	} else if n, ok := names[l.AuthorID]; ok {
		author = n
	}

	data := newShowData(viewdata.NewBaseVM(r, l.Title, "/listings"), l, author)
	data.CanEdit = authz.CanEditListing(r, l)
	data.CanDelete = authz.CanDeleteListing(r, l)
	data.CanManage = authz.CanManageTracking(r)
	if uid, _, signedIn := authz.Principal(r); signedIn {
		data.HasEndorsed = l.HasEndorsed(uid)
	}

	if data.CanManage {
		data.Statuses = models.TrackingStatuses
		auths, err := h.Authorities.List(ctx)
		if err != nil {
			h.Log.Warn("list authorities failed", zap.Error(err))
		}
		data.Authorities = auths
	}

	templates.Render(w, r, "listings_show", data)
}
