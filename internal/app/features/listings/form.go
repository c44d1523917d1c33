// internal/app/features/listings/form.go
package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/blobstore"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/htmlsanitize"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/inputval"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"go.uber.org/zap"
)

// listingInput defines validation rules for the complaint form.
type listingInput struct {
	Title       string `validate:"required,min=5,max=200" label:"Title"`
	Description string `validate:"max=2000" label:"Description"`
	Address     string `validate:"max=500" label:"Address"`
	City        string `validate:"required,max=100" label:"City"`
}

// allowedImageTypes are the sniffed content types accepted for photos.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	errBadImage     = apperr.Validation("Photo must be a JPEG, PNG, GIF or WebP image.")
	errHalfLocation = apperr.Validation("Location must include both latitude and longitude.")
	errFarLocation  = apperr.Validation("Location is out of range.")
)

// parseForm reads a multipart or url-encoded body capped at max bytes.
func parseForm(w http.ResponseWriter, r *http.Request, max int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, max)
	err := r.ParseMultipartForm(max)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// readInput collects and cleans the text fields. Markup is stripped before
// validation so length limits apply to what is stored.
func readInput(r *http.Request) (listingInput, formData) {
	in := listingInput{
		Title:       htmlsanitize.StripTags(r.FormValue("title")),
		Description: htmlsanitize.StripTags(r.FormValue("description")),
		Address:     htmlsanitize.StripTags(r.FormValue("address")),
		City:        htmlsanitize.StripTags(r.FormValue("city")),
	}
	fd := formData{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		Lat:         strings.TrimSpace(r.FormValue("lat")),
		Lng:         strings.TrimSpace(r.FormValue("lng")),
	}
	return in, fd
}

// validate runs the struct rules and the location check. It returns the
// first user-facing message, or "".
func (in listingInput) validate(fd formData) (*models.GeoPoint, string) {
	if res := inputval.Validate(in); res.HasErrors() {
		return nil, res.First()
	}
	loc, err := parseLocation(fd.Lat, fd.Lng)
	if err != nil {
		return nil, apperr.Message(err, "Location is invalid.")
	}
	return loc, ""
}

// parseLocation returns nil when both coordinates are blank.
func parseLocation(latStr, lngStr string) (*models.GeoPoint, error) {
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil {
		return nil, errHalfLocation
	}
	if !finite(lat) || !finite(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, errFarLocation
	}
	return &models.GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}, nil
}

// finite rejects NaN and the infinities, which ParseFloat accepts.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// uploadPhoto stores the "image" file if one was sent. ok is false when no
// file was attached.
func (h *Handler) uploadPhoto(ctx context.Context, r *http.Request) (obj blobstore.Object, ok bool, err error) {
	if r.MultipartForm == nil {
		return blobstore.Object{}, false, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return blobstore.Object{}, false, nil
	}
	if err != nil {
		return blobstore.Object{}, false, err
	}
	defer file.Close()

	if header.Size == 0 {
		return blobstore.Object{}, false, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return blobstore.Object{}, false, err
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[contentType] {
		return blobstore.Object{}, false, errBadImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return blobstore.Object{}, false, err
	}

	obj, err = blobstore.Upload(ctx, h.Blobs, header.Filename, file, contentType)
	if err != nil {
		return blobstore.Object{}, false, fmt.Errorf("store photo: %w", err)
	}
	return obj, true, nil
}

// releasePhoto deletes a stored photo. Failures are logged only; the
// complaint change has already happened.
func (h *Handler) releasePhoto(ctx context.Context, key string) {
	if key == "" || h.Blobs == nil {
		return
	}
	if err := h.Blobs.Delete(ctx, key); err != nil {
		h.Log.Warn("release photo failed", zap.String("key", key), zap.Error(err))
	}
}
