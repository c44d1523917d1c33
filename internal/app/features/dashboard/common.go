// internal/app/features/dashboard/common.go
package dashboard

import (
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
)

func dashboardTimeout() time.Duration { return timeouts.Medium() }

// complaintRow is one line in a dashboard table.
type complaintRow struct {
	ID                string
	Title             string
	City              string
	Status            models.TrackingStatus
	AssignedAuthority string
	Endorsements      int
	CreatedAt         time.Time
}

func toRows(ls []models.Listing) []complaintRow {
	out := make([]complaintRow, 0, len(ls))
	for _, l := range ls {
		out = append(out, complaintRow{
			ID:                l.ID.Hex(),
			Title:             l.Title,
			City:              l.City,
			Status:            models.CurrentStatus(l),
			AssignedAuthority: l.AssignedAuthority,
			Endorsements:      l.EndorsementCount(),
			CreatedAt:         l.CreatedAt,
		})
	}
	return out
}

type userData struct {
	viewdata.BaseVM
	Complaints []complaintRow
}
