// internal/domain/models/tracking.go
package models

import "time"

// TrackingStatus is one step of a complaint's lifecycle.
type TrackingStatus string

// Canonical tracking statuses. These exact strings are stored in the
// database and enforced by the listings collection validator.
const (
	StatusPendingVerification TrackingStatus = "Pending Verification"
	StatusVerified            TrackingStatus = "Verified"
	StatusAssigned            TrackingStatus = "Assigned to Authority"
	StatusInProgress          TrackingStatus = "Work in Progress"
	StatusResolved            TrackingStatus = "Resolved"
	StatusRejected            TrackingStatus = "Rejected"
)

// StatusUnset is returned by CurrentStatus for a complaint that has no
// tracking entries yet. It is never stored.
const StatusUnset TrackingStatus = "unset"

// TrackingStatuses is the full set of allowed statuses in lifecycle order.
// Treat it as the single source of truth for validation and schema enums.
var TrackingStatuses = []TrackingStatus{
	StatusPendingVerification,
	StatusVerified,
	StatusAssigned,
	StatusInProgress,
	StatusResolved,
	StatusRejected,
}

// ValidStatus reports whether s is one of TrackingStatuses.
func ValidStatus(s TrackingStatus) bool {
	for _, v := range TrackingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TrackingEntry is one immutable record of a status change.
type TrackingEntry struct {
	Status    TrackingStatus `bson:"status" json:"status"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
	Notes     string         `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CurrentStatus returns the status of the last tracking entry by position,
// regardless of UpdatedAt. Empty tracking yields StatusUnset.
func CurrentStatus(l Listing) TrackingStatus {
	if len(l.Tracking) == 0 {
		return StatusUnset
	}
	return l.Tracking[len(l.Tracking)-1].Status
}

// IsPendingAdminAction reports whether the complaint belongs in the admin
// work queue: nothing tracked yet, or still awaiting verification.
func IsPendingAdminAction(l Listing) bool {
	s := CurrentStatus(l)
	return s == StatusUnset || s == StatusPendingVerification
}

// FilterPendingAdminAction keeps the listings that need admin attention,
// preserving input order.
func FilterPendingAdminAction(ls []Listing) []Listing {
	out := make([]Listing, 0, len(ls))
	for _, l := range ls {
		if IsPendingAdminAction(l) {
			out = append(out, l)
		}
	}
	return out
}
