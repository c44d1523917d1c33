// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/indexes"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema applies collection validators and then indexes. Both steps
// are idempotent, so every instance runs them at boot.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("schema validators failed", zap.Error(err))
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return fmt.Errorf("ensure indexes: %w", err)
	}

	logger.Info("schema ready", zap.String("database", db.Name()))
	return nil
}
