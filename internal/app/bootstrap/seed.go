// internal/app/bootstrap/seed.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	authoritystore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/authorities"
	listingstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/listings"
	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// demoPassword is shared by every demo account.
const demoPassword = "Civic@1Demo"

var demoUsers = []userstore.NewUser{
	{Username: "admin1", Email: "admin1@example.com", Role: models.RoleAdmin},
	{Username: "admin2", Email: "admin2@example.com", Role: models.RoleAdmin},
	{Username: "sampleuser", Email: "user1@example.com", Role: models.RoleUser},
	{Username: "testuser1", Email: "user2@example.com", Role: models.RoleUser},
	{Username: "testuser2", Email: "user3@example.com", Role: models.RoleUser},
	{Username: "testuser3", Email: "user4@example.com", Role: models.RoleUser},
}

type demoListing struct {
	title, description, address, city string
	lng, lat                          float64
}

var demoListings = []demoListing{
	{"Deep pothole on Main Street", "A large pothole near the crosswalk, causing traffic slowdowns.", "Main Street by Central Park", "Pune", 73.8567, 18.5204},
	{"Broken streetlight near school", "Streetlight has not been working for over a week.", "Elm Road near Government School", "Pune", 73.8412, 18.5308},
	{"Overflowing trash bin on market road", "Garbage bin not emptied for days, trash spread around the area.", "Market Road junction", "Pune", 73.8631, 18.5139},
	{"Cracked sidewalk near bus stop", "Sidewalk has large cracks, dangerous for elderly and children.", "Bus Stop outside City Mall", "Pune", 73.8755, 18.5262},
	{"Blocked drain causing waterlogging", "After rains, water accumulates heavily due to the blocked drain.", "Drain by Riverside Road", "Mumbai", 72.8777, 19.0760},
	{"Leaking water main", "Clean water has been running into the street since Monday.", "Sector 4 crossing", "Delhi", 77.2090, 28.6139},
}

// demoProgress is the lifecycle a demo complaint walks through. Complaint i
// stops after the first i%len(demoProgress)+1 steps.
var demoProgress = []models.TrackingStatus{
	models.StatusPendingVerification,
	models.StatusVerified,
	models.StatusAssigned,
	models.StatusInProgress,
	models.StatusResolved,
}

// seedDemo fills a database that has no complaints with demo accounts and
// complaints at varying points of their lifecycle. The first admin authors
// every complaint. A complaint that reaches "Assigned to Authority" is
// assigned to the first directory entry for its city, when there is one.
func seedDemo(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	listings := listingstore.New(db)
	n, err := listings.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed demo: count complaints: %w", err)
	}
	if n > 0 {
		logger.Debug("demo seeding skipped, complaints exist", zap.Int64("count", n))
		return nil
	}

	users, err := ensureDemoUsers(ctx, userstore.New(db))
	if err != nil {
		logger.Error("demo user seeding failed", zap.Error(err))
		return fmt.Errorf("seed demo users: %w", err)
	}
	author := users[0]
	authorities := authoritystore.New(db)

	for i, d := range demoListings {
		l, err := listings.Create(ctx, models.Listing{
			Title:       d.title,
			Description: d.description,
			Address:     d.address,
			City:        d.city,
			Location:    models.GeoPoint{Type: "Point", Coordinates: [2]float64{d.lng, d.lat}},
			AuthorID:    author.ID,
			CreatedAt:   time.Now().UTC().Add(-time.Duration(len(demoListings)-i) * 24 * time.Hour),
		})
		if err != nil {
			return fmt.Errorf("seed demo complaint %q: %w", d.title, err)
		}

		assignee, err := demoAuthority(ctx, authorities, d.city)
		if err != nil {
			return fmt.Errorf("seed demo complaint %q: %w", d.title, err)
		}
		for _, status := range demoProgress[:i%len(demoProgress)+1] {
			authority := ""
			if status == models.StatusAssigned {
				authority = assignee
			}
			if _, err := listings.AppendTracking(ctx, l.ID, status, "", authority); err != nil {
				return fmt.Errorf("seed demo tracking %q: %w", d.title, err)
			}
		}

		// Citizens endorse every other complaint.
		if i%2 == 0 {
			for _, u := range users {
				if u.Role != models.RoleUser {
					continue
				}
				if _, err := listings.ToggleEndorsement(ctx, l.ID, u.ID); err != nil {
					return fmt.Errorf("seed demo endorsement %q: %w", d.title, err)
				}
			}
		}
	}

	logger.Info("seeded demo data",
		zap.Int("users", len(users)), zap.Int("complaints", len(demoListings)))
	return nil
}

// ensureDemoUsers creates the demo accounts, reusing any that already exist.
func ensureDemoUsers(ctx context.Context, store *userstore.Store) ([]models.User, error) {
	out := make([]models.User, 0, len(demoUsers))
	for _, in := range demoUsers {
		in.Password = demoPassword
		u, err := store.Create(ctx, in)
		if errors.Is(err, userstore.ErrDuplicateUsername) || errors.Is(err, userstore.ErrDuplicateEmail) {
			u, err = store.GetByUsername(ctx, in.Username)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Username, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// demoAuthority returns the name of the first directory entry for city, or
// "" when the city has none.
func demoAuthority(ctx context.Context, store *authoritystore.Store, city string) (string, error) {
	for _, a := range models.DefaultAuthorities {
		if a.City != city {
			continue
		}
		got, err := store.GetByName(ctx, a.Name)
		if apperr.KindOf(err) == apperr.KindNotFound {
			continue
		}
		if err != nil {
			return "", err
		}
		return got.Name, nil
	}
	return "", nil
}
