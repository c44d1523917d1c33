// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/resources"
	authoritystore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/authorities"
	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates, applies timeout overrides and seeds reference data.
// Demo data is only seeded outside production.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment",
			zap.Int("count", n), zap.Any("timeouts", timeouts.Current()))
	}

	if appCfg.SeedAuthorities {
		if err := seedAuthorities(ctx, deps.MongoDatabase, logger); err != nil {
			return err
		}
	}

	if err := ensureBootstrapAdmin(ctx, deps.MongoDatabase, appCfg, logger); err != nil {
		return err
	}

	if appCfg.SeedDemo && coreCfg.Env != "prod" {
		return seedDemo(ctx, deps.MongoDatabase, logger)
	}
	return nil
}

// seedAuthorities fills an empty authority directory with the defaults.
func seedAuthorities(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	n, err := authoritystore.New(db).SeedDefaults(ctx, models.DefaultAuthorities)
	if err != nil {
		logger.Error("authority seeding failed", zap.Error(err))
		return fmt.Errorf("seed authorities: %w", err)
	}
	if n > 0 {
		logger.Info("seeded authority directory", zap.Int("count", n))
	}
	return nil
}

// ensureBootstrapAdmin creates the configured admin account if it is missing.
// Nothing happens when no admin username is configured.
func ensureBootstrapAdmin(ctx context.Context, db *mongo.Database, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.AdminUsername == "" {
		return nil
	}
	created, err := userstore.New(db).EnsureAdmin(ctx, appCfg.AdminUsername, appCfg.AdminEmail, appCfg.AdminPassword)
	if err != nil {
		logger.Error("bootstrap admin failed",
			zap.String("username", appCfg.AdminUsername), zap.Error(err))
		return fmt.Errorf("ensure admin %q: %w", appCfg.AdminUsername, err)
	}
	if created {
		logger.Info("created bootstrap admin", zap.String("username", appCfg.AdminUsername))
	} else {
		logger.Debug("bootstrap admin already present", zap.String("username", appCfg.AdminUsername))
	}
	return nil
}
