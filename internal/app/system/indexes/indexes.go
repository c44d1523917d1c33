// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureListings(ctx, db); err != nil {
		problems = append(problems, "listings: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureAuthorities(ctx, db); err != nil {
		problems = append(problems, "authorities: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureListings(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("listings"), []mongo.IndexModel{
		// Index page, admin queue, city stats: newest first.
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_listings_createdat_id"),
		},
		// User dashboard: own complaints, newest first.
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_listings_author_createdat"),
		},
		{
			Keys:    bson.D{{Key: "city", Value: 1}},
			Options: options.Index().SetName("idx_listings_city"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("geo_listings_location"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_usernameci"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_users_role"),
		},
	})
}

func ensureAuthorities(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("authorities"), []mongo.IndexModel{
		// Directory listing sorts by city, then name; one authority per name per city.
		{
			Keys:    bson.D{{Key: "city", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_authorities_city_name"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(p *bool) bool {
	return p != nil && *p
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes each desired index exist under its desired name and
// uniqueness. An index over the same keys with a different name or options
// is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A missing collection lists as an error on some servers; create will make it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = boolVal(m.Options.Unique)
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if boolVal(ex.Unique) == unique && (name == "" || ex.Name == name) {
				log.Info("reusing existing index")
				continue
			}
			log.Info("replacing index with mismatched name or options", zap.String("existing", ex.Name))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			if isDuplicateKeyErr(err) && unique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		log.Info("index ensured", zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
