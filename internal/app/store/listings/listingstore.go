// internal/app/store/listings/listingstore.go
package listingstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding complaints.
const Collection = "listings"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var (
	errNoAuthor   = apperr.Validation("a complaint must have an author")
	errNoTitle    = apperr.Validation("title is required")
	errBadStatus  = apperr.Validation("status is not a valid tracking status")
	errNotFound   = apperr.NotFound("complaint not found")
	errBadEndorse = apperr.Validation("a user id is required to endorse")
)

// Create inserts a new complaint authored by l.AuthorID.
// The placeholder image and default location are applied when missing.
// Tracking and endorsers always start empty.
func (s *Store) Create(ctx context.Context, l models.Listing) (models.Listing, error) {
	if l.AuthorID.IsZero() {
		return models.Listing{}, errNoAuthor
	}
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		return models.Listing{}, errNoTitle
	}

	l.ID = primitive.NewObjectID()
	l.Image = models.ImageOrDefault(l.Image)
	if l.Image == models.DefaultImageURL {
		l.ImageKey = ""
	}
	if l.Location.Type == "" {
		l.Location = models.DefaultLocation()
	}
	l.Tracking = []models.TrackingEntry{}
	l.Endorsers = []primitive.ObjectID{}
	l.AssignedAuthority = ""

	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// GetByID loads one complaint. Returns an apperr NotFound if it does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Listing, error) {
	var l models.Listing
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Listing{}, errNotFound
		}
		return models.Listing{}, err
	}
	return l, nil
}

// List returns every complaint, most recently created first.
func (s *Store) List(ctx context.Context) ([]models.Listing, error) {
	return s.find(ctx, bson.M{})
}

// ListByAuthor returns the complaints created by authorID, newest first.
func (s *Store) ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"author_id": authorID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Listing{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImageRef replaces a complaint's picture. An empty URL resets it to the
// placeholder and clears the key.
type ImageRef struct {
	URL string
	Key string
}

// FieldsUpdate holds the author-editable fields. A nil Image or Location
// leaves the stored value unchanged.
type FieldsUpdate struct {
	Title       string
	Description string
	Address     string
	City        string
	Image       *ImageRef
	Location    *models.GeoPoint
}

// UpdateFields rewrites the descriptive fields of a complaint and returns
// the updated document. Ownership is checked by the caller. Tracking,
// endorsers, author and authority are never touched here.
func (s *Store) UpdateFields(ctx context.Context, id primitive.ObjectID, upd FieldsUpdate) (models.Listing, error) {
	title := strings.TrimSpace(upd.Title)
	if title == "" {
		return models.Listing{}, errNoTitle
	}

	set := bson.M{
		"title":       title,
		"description": upd.Description,
		"address":     upd.Address,
		"city":        upd.City,
		"updated_at":  time.Now().UTC(),
	}
	if upd.Image != nil {
		img := models.ImageOrDefault(upd.Image.URL)
		set["image"] = img
		if img == models.DefaultImageURL {
			set["image_key"] = ""
		} else {
			set["image_key"] = upd.Image.Key
		}
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}

	return s.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// Delete removes a complaint and returns it so the caller can release the
// stored image by its ImageKey.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Listing, error) {
	var l models.Listing
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Listing{}, errNotFound
		}
		return models.Listing{}, err
	}
	return l, nil
}

// AppendTracking appends one tracking entry at the end of the history and,
// when authority is non-empty, assigns it. Both changes land in a single
// document update. Calling it twice appends two entries.
func (s *Store) AppendTracking(ctx context.Context, id primitive.ObjectID, status models.TrackingStatus, notes, authority string) (models.Listing, error) {
	if !models.ValidStatus(status) {
		return models.Listing{}, errBadStatus
	}

	now := time.Now().UTC()
	entry := models.TrackingEntry{
		Status:    status,
		UpdatedAt: now,
		Notes:     strings.TrimSpace(notes),
	}

	set := bson.M{"updated_at": now}
	if a := strings.TrimSpace(authority); a != "" {
		set["assigned_authority"] = a
	}

	update := bson.M{
		"$push": bson.M{"tracking": entry},
		"$set":  set,
	}
	return s.findOneAndUpdate(ctx, id, update)
}

// ToggleEndorsement flips userID's membership in the endorsers set and
// returns the updated complaint. The flip is a single server-side pipeline
// update on the one document.
func (s *Store) ToggleEndorsement(ctx context.Context, id, userID primitive.ObjectID) (models.Listing, error) {
	if userID.IsZero() {
		return models.Listing{}, errBadEndorse
	}

	current := bson.M{"$ifNull": bson.A{"$endorsers", bson.A{}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"endorsers": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, current}},
				bson.M{"$filter": bson.M{
					"input": current,
					"cond":  bson.M{"$ne": bson.A{"$$this", userID}},
				}},
				bson.M{"$concatArrays": bson.A{current, bson.A{userID}}},
			}},
		}}},
	}
	return s.findOneAndUpdate(ctx, id, pipeline)
}

// PendingAdminQueue returns the complaints awaiting admin action: no
// tracking yet, or last status Pending Verification. Ordered newest first.
func (s *Store) PendingAdminQueue(ctx context.Context) ([]models.Listing, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterPendingAdminAction(all), nil
}

// Count returns the total number of complaints.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

func (s *Store) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update interface{}) (models.Listing, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l models.Listing
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Listing{}, errNotFound
		}
		return models.Listing{}, err
	}
	return l, nil
}
