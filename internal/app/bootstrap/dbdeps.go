// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/blobstore"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil unless limit_store is "redis" and the server answered.
	Redis *redis.Client

	// Blobs stores complaint photos.
	Blobs blobstore.Store

	// LimitStore backs the rate limiters and the login lockout.
	LimitStore ratelimit.Store

	// memStore is set when LimitStore is in-process so Shutdown can stop its sweeper.
	memStore *ratelimit.MemoryStore
}
