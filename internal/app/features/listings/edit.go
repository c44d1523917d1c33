// internal/app/features/listings/edit.go
package listings

import (
	"context"
	"fmt"
	"net/http"

	listingstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/listings"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"go.uber.org/zap"
)

const notOwnerMsg = "You do not have permission to do that."

// ServeEdit handles GET /listings/{id}/edit. Only the author may edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, ok := h.loadListing(ctx, w, r)
	if !ok {
		return
	}
	if !authz.CanEditListing(r, l) {
		h.ErrLog.LogForbidden(w, r, "edit complaint: not the author", notOwnerMsg, "/listings/"+l.ID.Hex())
		return
	}

	h.renderForm(w, r, http.StatusOK, formData{
		BaseVM:      viewdata.NewBaseVM(r, "Edit complaint", "/listings/"+l.ID.Hex()),
		ID:          l.ID.Hex(),
		Title:       l.Title,
		Description: l.Description,
		Address:     l.Address,
		City:        l.City,
		Lat:         fmt.Sprintf("%g", l.Location.Coordinates[1]),
		Lng:         fmt.Sprintf("%g", l.Location.Coordinates[0]),
		Image:       l.Image,
		HasPhoto:    l.ImageKey != "",
	})
}

// HandleUpdate handles POST (or PUT) /listings/{id}. Only the author may
// update; tracking, endorsements and the assigned authority are untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	l, ok := h.loadListing(ctx, w, r)
	if !ok {
		return
	}
	if !authz.CanEditListing(r, l) {
		h.ErrLog.LogForbidden(w, r, "update complaint: not the author", notOwnerMsg, "/listings/"+l.ID.Hex())
		return
	}

	if err := parseForm(w, r, h.MaxUploadBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse complaint form failed", err, "The form could not be read. Photos must be smaller than the upload limit.", "/listings/"+l.ID.Hex()+"/edit")
		return
	}

	in, fd := readInput(r)
	fd.BaseVM = viewdata.NewBaseVM(r, "Edit complaint", "/listings/"+l.ID.Hex())
	fd.ID = l.ID.Hex()
	fd.Image = l.Image
	fd.HasPhoto = l.ImageKey != ""

	loc, msg := in.validate(fd)
	if msg != "" {
		fd.Error = msg
		h.renderForm(w, r, http.StatusBadRequest, fd)
		return
	}

	photo, hasPhoto, err := h.uploadPhoto(ctx, r)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			fd.Error = apperr.Message(err, "Invalid photo.")
			h.renderForm(w, r, http.StatusBadRequest, fd)
			return
		}
		h.ErrLog.LogServerError(w, r, "upload photo failed", err, "Your photo could not be saved. Please try again.", "/listings/"+l.ID.Hex())
		return
	}

	upd := listingstore.FieldsUpdate{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		Location:    loc,
	}
	switch {
	case hasPhoto:
		upd.Image = &listingstore.ImageRef{URL: photo.URL, Key: photo.Key}
	case r.FormValue("remove_image") != "":
		upd.Image = &listingstore.ImageRef{}
	}

	updated, err := h.Listings.UpdateFields(ctx, l.ID, upd)
	if err != nil {
		h.releasePhoto(ctx, photo.Key)
		if apperr.KindOf(err) == apperr.KindValidation {
			fd.Error = apperr.Message(err, "Invalid input.")
			h.renderForm(w, r, http.StatusBadRequest, fd)
			return
		}
		h.ErrLog.RenderAppError(w, r, "update complaint failed", err, "/listings")
		return
	}

	if l.ImageKey != "" && l.ImageKey != updated.ImageKey {
		h.releasePhoto(ctx, l.ImageKey)
	}

	h.Log.Info("complaint updated", zap.String("listing_id", l.ID.Hex()))
	h.flashSuccess(w, r, "Complaint successfully updated.")
	http.Redirect(w, r, "/listings/"+l.ID.Hex(), http.StatusSeeOther)
}
