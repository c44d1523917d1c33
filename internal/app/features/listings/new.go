// internal/app/features/listings/new.go
package listings

import (
	"context"
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/metrics"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeNew handles GET /listings/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formData{
		BaseVM: viewdata.NewBaseVM(r, "New complaint", "/listings"),
		Action: "/listings",
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, fd formData) {
	fd.MaxUploadMB = h.MaxUploadBytes >> 20
	if fd.Action == "" {
		fd.Action = "/listings/" + fd.ID
	}
	name := "listings_new"
	if fd.ID != "" {
		name = "listings_edit"
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, name, fd)
}

// HandleCreate handles POST /listings.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := authz.Principal(r)
	if !ok {
		h.ErrLog.RenderAppError(w, r, "create complaint without user", apperr.Authentication("You must be signed in first!"), "/listings")
		return
	}

	if err := parseForm(w, r, h.MaxUploadBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse complaint form failed", err, "The form could not be read. Photos must be smaller than the upload limit.", "/listings/new")
		return
	}

	in, fd := readInput(r)
	fd.BaseVM = viewdata.NewBaseVM(r, "New complaint", "/listings")
	fd.Action = "/listings"

	loc, msg := in.validate(fd)
	if msg != "" {
		fd.Error = msg
		h.renderForm(w, r, http.StatusBadRequest, fd)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	photo, hasPhoto, err := h.uploadPhoto(ctx, r)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			fd.Error = apperr.Message(err, "Invalid photo.")
			h.renderForm(w, r, http.StatusBadRequest, fd)
			return
		}
		h.ErrLog.LogServerError(w, r, "upload photo failed", err, "Your photo could not be saved. Please try again.", "/listings/new")
		return
	}

	l := models.Listing{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		AuthorID:    uid,
	}
	if loc != nil {
		l.Location = *loc
	}
	if hasPhoto {
		l.Image = photo.URL
		l.ImageKey = photo.Key
	}

	created, err := h.Listings.Create(ctx, l)
	if err != nil {
		h.releasePhoto(ctx, photo.Key)
		if apperr.KindOf(err) == apperr.KindValidation {
			fd.Error = apperr.Message(err, "Invalid input.")
			h.renderForm(w, r, http.StatusBadRequest, fd)
			return
		}
		h.ErrLog.LogServerError(w, r, "create complaint failed", err, "A database error occurred.", "/listings")
		return
	}

	metrics.ComplaintsCreated.Inc()
	h.Log.Info("complaint created",
		zap.String("listing_id", created.ID.Hex()),
		zap.String("author_id", uid.Hex()),
		zap.String("city", created.City),
		zap.Bool("photo", hasPhoto))

	h.flashSuccess(w, r, "New complaint registered!")
	http.Redirect(w, r, "/listings", http.StatusSeeOther)
}
