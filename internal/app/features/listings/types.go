// internal/app/features/listings/types.go
package listings

import (
	"html/template"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/htmlsanitize"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
)

// listingRow is one card on the index and dashboards.
type listingRow struct {
	ID           string
	Title        string
	City         string
	Address      string
	Image        string
	Status       models.TrackingStatus
	Endorsements int
	CreatedAt    time.Time
}

func toRow(l models.Listing) listingRow {
	return listingRow{
		ID:           l.ID.Hex(),
		Title:        l.Title,
		City:         l.City,
		Address:      l.Address,
		Image:        l.Image,
		Status:       models.CurrentStatus(l),
		Endorsements: l.EndorsementCount(),
		CreatedAt:    l.CreatedAt,
	}
}

// ToRows converts listings for display, preserving order.
func toRows(ls []models.Listing) []listingRow {
	out := make([]listingRow, 0, len(ls))
	for _, l := range ls {
		out = append(out, toRow(l))
	}
	return out
}

type indexData struct {
	viewdata.BaseVM
	Listings []listingRow
}

type trackingRow struct {
	Status    models.TrackingStatus
	UpdatedAt time.Time
	Notes     string
}

type showData struct {
	viewdata.BaseVM
	ID                string
	Title             string
	DescriptionHTML   template.HTML
	Image             string
	Address           string
	City              string
	Lat               float64
	Lng               float64
	AuthorName        string
	CreatedAt         time.Time
	Status            models.TrackingStatus
	Tracking          []trackingRow
	AssignedAuthority string
	Endorsements      int
	HasEndorsed       bool

	CanEdit   bool
	CanDelete bool
	CanManage bool

	// Admin status form.
	Statuses    []models.TrackingStatus
	Authorities []models.Authority
}

func newShowData(base viewdata.BaseVM, l models.Listing, author string) showData {
	d := showData{
		BaseVM:            base,
		ID:                l.ID.Hex(),
		Title:             l.Title,
		DescriptionHTML:   htmlsanitize.PrepareForDisplay(l.Description),
		Image:             l.Image,
		Address:           l.Address,
		City:              l.City,
		Lng:               l.Location.Coordinates[0],
		Lat:               l.Location.Coordinates[1],
		AuthorName:        author,
		CreatedAt:         l.CreatedAt,
		Status:            models.CurrentStatus(l),
		AssignedAuthority: l.AssignedAuthority,
		Endorsements:      l.EndorsementCount(),
	}
	for _, t := range l.Tracking {
		d.Tracking = append(d.Tracking, trackingRow{Status: t.Status, UpdatedAt: t.UpdatedAt, Notes: t.Notes})
	}
	return d
}

// formData backs both the new and edit forms.
type formData struct {
	viewdata.BaseVM
	ID          string // empty on the new form
	Action      string
	Error       string
	Title       string
	Description string
	Address     string
	City        string
	Lat         string
	Lng         string
	Image       string
	HasPhoto    bool
	MaxUploadMB int64
}
