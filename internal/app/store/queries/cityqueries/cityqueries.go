// Package cityqueries provides read-only aggregations over complaints by city.
package cityqueries

import (
	"context"
	"sort"
	"strings"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UnknownCity labels complaints filed without a city.
const UnknownCity = "Unknown"

// CityCount is one row of a per-city tally.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// ResolvedCountsByCity counts complaints whose current status is Resolved,
// grouped by city. Current status is the last tracking entry by position,
// the same rule models.CurrentStatus applies. Rows are ordered by count
// descending; ties keep the order in which each city was first seen when
// scanning complaints oldest first.
func ResolvedCountsByCity(ctx context.Context, db *mongo.Database) ([]CityCount, error) {
	pipeline := []bson.M{
		{"$sort": bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		{"$project": bson.M{
			"_id":  0,
			"city": bson.M{"$ifNull": bson.A{"$city", ""}},
			"last": bson.M{"$arrayElemAt": bson.A{"$tracking.status", -1}},
		}},
		{"$match": bson.M{"last": string(models.StatusResolved)}},
		{"$project": bson.M{"city": 1}},
	}

	cur, err := db.Collection("listings").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var cities []string
	for cur.Next(ctx) {
		var row struct {
			City string `bson:"city"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		cities = append(cities, row.City)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return Tally(cities), nil
}

// Tally counts occurrences of each city. Blank names are counted under
// UnknownCity. The result is sorted by count descending with ties in
// first-seen order.
func Tally(cities []string) []CityCount {
	out := []CityCount{}
	index := map[string]int{}
	for _, c := range cities {
		c = strings.TrimSpace(c)
		if c == "" {
			c = UnknownCity
		}
		i, ok := index[c]
		if !ok {
			i = len(out)
			index[c] = i
			out = append(out, CityCount{City: c})
		}
		out[i].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
