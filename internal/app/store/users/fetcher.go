package userstore

import (
	"context"
	"errors"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection(Collection)}
}

// FetchSessionUser returns (nil, nil) when the id is malformed or the user
// no longer exists.
func (f *Fetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u struct {
		ID       primitive.ObjectID `bson:"_id"`
		Username string             `bson:"username"`
		Role     string             `bson:"role"`
	}
	proj := options.FindOne().SetProjection(bson.M{"_id": 1, "username": 1, "role": 1})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.Username,
		LoginID: u.Username,
		Role:    u.Role,
	}, nil
}
