// internal/app/features/listings/common.go
package listings

import (
	"context"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errBadID = apperr.NotFound("Cannot find that complaint!")

// listingID parses the {id} URL parameter.
func listingID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, errBadID
	}
	return id, nil
}

// loadListing resolves {id} and renders the error page itself when it
// cannot. ok=false means the response has been written.
func (h *Handler) loadListing(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Listing, bool) {
	id, err := listingID(r)
	if err != nil {
		h.ErrLog.RenderAppError(w, r, "bad complaint id", err, "/listings")
		return models.Listing{}, false
	}
	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.RenderAppError(w, r, "load complaint failed", err, "/listings")
		return models.Listing{}, false
	}
	return l, true
}

// flash queues a notice; failure to save it never blocks the redirect.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if h.SessionMgr == nil {
		return
	}
	if err := h.SessionMgr.AddFlash(w, r, kind, msg); err != nil {
		h.Log.Warn("flash: save session", zap.Error(err))
	}
}

func (h *Handler) flashSuccess(w http.ResponseWriter, r *http.Request, msg string) {
	h.flash(w, r, auth.FlashSuccess, msg)
}

func (h *Handler) flashError(w http.ResponseWriter, r *http.Request, msg string) {
	h.flash(w, r, auth.FlashError, msg)
}
