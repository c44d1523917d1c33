package authoritystore

import (
	"context"
	"errors"
	"strings"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the authorities collection name.
const Collection = "authorities"

var (
	errIncomplete = apperr.Validation("authority name and city are required")
	errNotFound   = apperr.NotFound("That authority is not in the directory.")
)

// Store is the authority directory.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// List returns every authority sorted by city, then name.
func (s *Store) List(ctx context.Context) ([]models.Authority, error) {
	opts := options.Find().SetSort(bson.D{{Key: "city", Value: 1}, {Key: "name", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Authority{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByName looks an authority up by its exact name.
func (s *Store) GetByName(ctx context.Context, name string) (models.Authority, error) {
	var a models.Authority
	err := s.c.FindOne(ctx, bson.M{"name": strings.TrimSpace(name)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Authority{}, errNotFound
	}
	if err != nil {
		return models.Authority{}, err
	}
	return a, nil
}

// Create inserts one authority. Inserting a duplicate city/name pair is a no-op.
func (s *Store) Create(ctx context.Context, a models.Authority) (models.Authority, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.City = strings.TrimSpace(a.City)
	if a.Name == "" || a.City == "" {
		return models.Authority{}, errIncomplete
	}
	a.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return a, nil
		}
		return models.Authority{}, err
	}
	return a, nil
}

// SeedDefaults inserts seeds when the directory is empty and reports how
// many were inserted. A non-empty directory is left alone.
func (s *Store) SeedDefaults(ctx context.Context, seeds []models.Authority) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	inserted := 0
	var errs []error
	for _, a := range seeds {
		if _, err := s.Create(ctx, a); err != nil {
			errs = append(errs, err)
			continue
		}
		inserted++
	}
	return inserted, errors.Join(errs...)
}
