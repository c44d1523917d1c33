package metricsstore

import (
	"context"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Complaints  int64
	Resolved    int64
	Citizens    int64
	Admins      int64
	Authorities int64
}

// FetchDashboardCounts returns the high-level counts used by the admin
// dashboard. Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	if n, err := db.Collection("listings").CountDocuments(ctx, bson.M{}); err == nil {
		out.Complaints = n
	}

	// Current status is the last tracking entry by position.
	resolved := bson.M{"$expr": bson.M{"$eq": bson.A{
		bson.M{"$arrayElemAt": bson.A{"$tracking.status", -1}},
		string(models.StatusResolved),
	}}}
	if n, err := db.Collection("listings").CountDocuments(ctx, resolved); err == nil {
		out.Resolved = n
	}

	if n, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleUser}); err == nil {
		out.Citizens = n
	}
	if n, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleAdmin}); err == nil {
		out.Admins = n
	}

	if n, err := db.Collection("authorities").CountDocuments(ctx, bson.M{}); err == nil {
		out.Authorities = n
	}

	return out
}
