package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "Str0ng@Pass"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with TestPassword as its password.
func (f *Fixtures) CreateUser(ctx context.Context, username string, role models.Role) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateCitizen creates a user with the citizen role.
func (f *Fixtures) CreateCitizen(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, models.RoleUser)
}

// CreateAdmin creates a user with the admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, models.RoleAdmin)
}

// CreateListing inserts a complaint in city whose tracking history holds the
// given statuses in order. createdAt orders listings in queue tests.
func (f *Fixtures) CreateListing(ctx context.Context, authorID primitive.ObjectID, city string, createdAt time.Time, statuses ...models.TrackingStatus) models.Listing {
	f.t.Helper()

	l := models.Listing{
		ID:          primitive.NewObjectID(),
		Title:       "Broken streetlight in " + city,
		Description: "The streetlight has been out for a week.",
		Image:       models.DefaultImageURL,
		City:        city,
		Location:    models.DefaultLocation(),
		AuthorID:    authorID,
		Tracking:    []models.TrackingEntry{},
		Endorsers:   []primitive.ObjectID{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	for i, s := range statuses {
		l.Tracking = append(l.Tracking, models.TrackingEntry{
			Status:    s,
			UpdatedAt: createdAt.Add(time.Duration(i+1) * time.Hour),
		})
	}

	if _, err := f.db.Collection("listings").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("failed to create test listing: %v", err)
	}
	return l
}

// CreateAuthority inserts a municipal authority.
func (f *Fixtures) CreateAuthority(ctx context.Context, name, city string) models.Authority {
	f.t.Helper()

	a := models.Authority{ID: primitive.NewObjectID(), Name: name, City: city}
	if _, err := f.db.Collection("authorities").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test authority: %v", err)
	}
	return a
}
