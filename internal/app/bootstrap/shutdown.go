// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
// Every resource is released even when an earlier one fails.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error

	if deps.memStore != nil {
		deps.memStore.Close()
	}

	if deps.Redis != nil {
		logger.Info("closing Redis client")
		if err := deps.Redis.Close(); err != nil {
			logger.Error("Redis close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
