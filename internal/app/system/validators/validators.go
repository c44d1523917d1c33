// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	authoritystore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/authorities"
	listingstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/listings"
	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the listings, users and authorities collections when
// missing and attaches a JSON-Schema validator to each. Deployments without
// collMod support (some DocumentDB versions) keep the collections and skip
// the validators.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	specs := []struct {
		name   string
		schema bson.M
	}{
		{listingstore.Collection, listingsSchema()},
		{userstore.Collection, usersSchema()},
		{authoritystore.Collection, authoritiesSchema()},
	}

	var errs []error
	for _, sp := range specs {
		if err := ensureCollection(ctx, db, sp.name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sp.name, err))
			continue
		}
		err := setValidator(ctx, db, sp.name, sp.schema)
		switch {
		case err == nil:
		case unsupported(err):
			zap.L().Info("validator skipped (unsupported)", zap.String("collection", sp.name))
		default:
			errs = append(errs, fmt.Errorf("%s: %w", sp.name, err))
		}
	}
	return errors.Join(errs...)
}

// ensureCollection creates name unless it already exists. Losing a creation
// race to another instance counts as success.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if namespaceExists(err) {
			return nil
		}
		zap.L().Warn("create collection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

// setValidator applies schema with moderate validation: existing invalid
// documents stay readable, new writes must conform.
func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

// Server error codes.
const (
	codeNamespaceExists = 48
	codeCommandNotFound = 59
	codeNotImplemented  = 115
)

func namespaceExists(err error) bool {
	return matchCommandErr(err, []int32{codeNamespaceExists}, "already exists", "namespace exists")
}

func unsupported(err error) bool {
	return matchCommandErr(err, []int32{codeCommandNotFound, codeNotImplemented},
		"no such command", "not implemented", "not supported")
}

// matchCommandErr reports whether err carries one of codes or mentions one
// of phrases. Phrases cover drivers and proxies that drop the code.
func matchCommandErr(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && slices.Contains(codes, ce.Code) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func enumOf[T ~string](vals []T) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

func listingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "author_id", "created_at"},
			"properties": bson.M{
				"title":              bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description":        bson.M{"bsonType": "string"},
				"image":              bson.M{"bsonType": "string"},
				"image_key":          bson.M{"bsonType": "string"},
				"address":            bson.M{"bsonType": "string"},
				"city":               bson.M{"bsonType": "string"},
				"author_id":          bson.M{"bsonType": "objectId"},
				"assigned_authority": bson.M{"bsonType": "string"},
				"created_at":         bson.M{"bsonType": "date"},
				"location": bson.M{
					"bsonType": "object",
					"required": bson.A{"type", "coordinates"},
					"properties": bson.M{
						"type":        bson.M{"enum": bson.A{"Point"}},
						"coordinates": bson.M{"bsonType": "array", "minItems": 2, "maxItems": 2},
					},
				},
				"tracking": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"status", "updated_at"},
						"properties": bson.M{
							"status":     bson.M{"enum": enumOf(models.TrackingStatuses)},
							"updated_at": bson.M{"bsonType": "date"},
							"notes":      bson.M{"bsonType": "string"},
						},
					},
				},
				"endorsers": bson.M{
					"bsonType":    "array",
					"uniqueItems": true,
					"items":       bson.M{"bsonType": "objectId"},
				},
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "username_ci", "email", "password_hash", "role"},
			"properties": bson.M{
				"username":      bson.M{"bsonType": "string", "minLength": 1},
				"username_ci":   bson.M{"bsonType": "string", "minLength": 1},
				"email":         bson.M{"bsonType": "string", "minLength": 3},
				"password_hash": bson.M{"bsonType": "string", "minLength": 1},
				"role":          bson.M{"enum": enumOf(models.Roles)},
			},
		},
	}
}

func authoritiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "city"},
			"properties": bson.M{
				"name": bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"city": bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
			},
		},
	}
}
