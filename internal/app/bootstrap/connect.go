// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/blobstore"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	connectTimeout  = 10 * time.Second
	limitSweepEvery = time.Minute
	redisKeyPrefix  = "nagarseva:"
)

// ConnectDB opens MongoDB, the rate-limit store and the photo store.
//
// MongoDB and the photo store are required: any failure aborts startup.
// Redis is optional; when it cannot be reached the limiters fall back to
// the in-process store so a Redis outage never blocks the portal.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	client, err := connectMongo(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)

	deps.Redis, deps.LimitStore, deps.memStore = connectLimitStore(ctx, appCfg, logger)

	blobs, err := openBlobStore(appCfg, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		if deps.Redis != nil {
			_ = deps.Redis.Close()
		}
		if deps.memStore != nil {
			deps.memStore.Close()
		}
		return DBDeps{}, err
	}
	deps.Blobs = blobs

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetAppName("nagarseva")

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))
	return client, nil
}

func connectLimitStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*redis.Client, ratelimit.Store, *ratelimit.MemoryStore) {
	if appCfg.LimitStore == LimitStoreRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := rdb.Ping(pctx).Err()
		cancel()
		if err == nil {
			logger.Info("rate limits backed by Redis", zap.String("addr", appCfg.RedisAddr))
			return rdb, ratelimit.NewRedisStore(rdb, redisKeyPrefix), nil
		}
		_ = rdb.Close()
		logger.Warn("Redis unreachable; using in-memory rate limits",
			zap.String("addr", appCfg.RedisAddr), zap.Error(err))
	}

	mem := ratelimit.NewMemoryStore(appCfg.LimitMaxKeys, limitSweepEvery)
	logger.Info("rate limits kept in memory", zap.Int("max_keys", appCfg.LimitMaxKeys))
	return nil, mem, mem
}

func openBlobStore(appCfg AppConfig, logger *zap.Logger) (blobstore.Store, error) {
	switch appCfg.StorageType {
	case StorageS3:
		s, err := blobstore.NewS3(blobstore.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			Endpoint:  appCfg.StorageS3Endpoint,
			PublicURL: appCfg.StorageS3PublicURL,
		})
		if err != nil {
			logger.Error("S3 photo store init failed", zap.Error(err))
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		logger.Info("photo storage: S3",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("region", appCfg.StorageS3Region))
		return s, nil
	default:
		l, err := blobstore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			logger.Error("local photo store init failed", zap.Error(err))
			return nil, fmt.Errorf("open local store: %w", err)
		}
		logger.Info("photo storage: local",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL))
		return l, nil
	}
}
