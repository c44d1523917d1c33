// internal/domain/models/listing.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultImageURL is shown for complaints submitted without a photo.
const DefaultImageURL = "https://images.squarespace-cdn.com/content/v1/573365789f726693272dc91a/1704992146415-CI272VYXPALWT52IGLUB/AdobeStock_201419293.jpeg?format=1500w"

// DefaultLng and DefaultLat locate the Pune city centre, used when a
// complaint is submitted without coordinates.
const (
	DefaultLng = 73.8567
	DefaultLat = 18.5204
)

// GeoPoint is a GeoJSON point. Coordinates are [lng, lat].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// DefaultLocation returns the fallback point.
func DefaultLocation() GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{DefaultLng, DefaultLat}}
}

// Listing is a citizen-submitted civic complaint.
//
// Tracking is append-only; Endorsers holds each user at most once.
// ImageKey is the blob-store key of an uploaded photo and is empty when
// Image points at the placeholder.
type Listing struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title             string               `bson:"title" json:"title"`
	Description       string               `bson:"description,omitempty" json:"description,omitempty"`
	Image             string               `bson:"image" json:"image"`
	ImageKey          string               `bson:"image_key,omitempty" json:"-"`
	Address           string               `bson:"address,omitempty" json:"address,omitempty"`
	City              string               `bson:"city,omitempty" json:"city,omitempty"`
	Location          GeoPoint             `bson:"location" json:"location"`
	AuthorID          primitive.ObjectID   `bson:"author_id" json:"author_id"`
	Tracking          []TrackingEntry      `bson:"tracking" json:"tracking"`
	AssignedAuthority string               `bson:"assigned_authority,omitempty" json:"assigned_authority,omitempty"`
	Endorsers         []primitive.ObjectID `bson:"endorsers" json:"endorsers"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ImageOrDefault applies the placeholder substitution used on every write.
func ImageOrDefault(url string) string {
	if strings.TrimSpace(url) == "" {
		return DefaultImageURL
	}
	return url
}

// HasEndorsed reports whether userID is among the listing's endorsers.
func (l Listing) HasEndorsed(userID primitive.ObjectID) bool {
	for _, id := range l.Endorsers {
		if id == userID {
			return true
		}
	}
	return false
}

// EndorsementCount is the number of distinct endorsers.
func (l Listing) EndorsementCount() int {
	return len(l.Endorsers)
}

// IsAuthor reports whether userID created the listing.
func (l Listing) IsAuthor(userID primitive.ObjectID) bool {
	return !userID.IsZero() && l.AuthorID == userID
}

// Status is a template convenience for CurrentStatus.
func (l Listing) Status() TrackingStatus {
	return CurrentStatus(l)
}
