// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/httpmw"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for NagarSeva.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: NAGARSEVA_MONGO_URI, NAGARSEVA_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "nagarseva", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "nagarseva-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie lifetime (e.g., 24h, 168h)"},
	{Name: "csrf_key", Default: "", Desc: "32-byte CSRF key (blank derives from session_key)"},

	// Photo storage
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for complaint photos"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local photos"},
	{Name: "storage_s3_region", Default: "ap-south-1", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "nagarseva/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3 endpoint (MinIO, R2); blank uses AWS"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for stored photos (CDN)"},
	{Name: "max_upload_mb", Default: 10, Desc: "Maximum complaint form size in MB, photo included"},

	// Rate limiting
	{Name: "limit_store", Default: "memory", Desc: "Rate limit state: 'memory' or 'redis'"},
	{Name: "redis_addr", Default: "", Desc: "Redis address (host:port) when limit_store is redis"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "limit_max_keys", Default: 100000, Desc: "Max tracked keys in the memory limiter"},
	{Name: "rate_general_limit", Default: 100, Desc: "Requests per IP per general window"},
	{Name: "rate_general_window", Default: "15m", Desc: "General rate limit window"},
	{Name: "rate_auth_limit", Default: 5, Desc: "Login attempts per IP per auth window"},
	{Name: "rate_auth_window", Default: "15m", Desc: "Login rate limit window"},
	{Name: "rate_signup_limit", Default: 3, Desc: "Signups per IP per signup window"},
	{Name: "rate_signup_window", Default: "1h", Desc: "Signup rate limit window"},
	{Name: "lockout_max_attempts", Default: 5, Desc: "Failed logins before an account is locked"},
	{Name: "lockout_duration", Default: "15m", Desc: "How long a locked account stays locked"},
	{Name: "trust_proxy", Default: "", Desc: "Comma-separated proxy IPs/CIDRs trusted to set X-Real-IP (blank trusts none)"},

	// Accounts
	{Name: "allow_admin_signup", Default: false, Desc: "Allow the signup form to create administrators"},
	{Name: "admin_username", Default: "", Desc: "Bootstrap admin username (created at startup if missing)"},
	{Name: "admin_email", Default: "", Desc: "Bootstrap admin email"},
	{Name: "admin_password", Default: "", Desc: "Bootstrap admin password"},

	// Seeding and observability
	{Name: "seed_authorities", Default: true, Desc: "Seed the default authority directory when empty"},
	{Name: "seed_demo", Default: false, Desc: "Seed demo users and complaints when no complaints exist (dev only)"},
	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, NAGARSEVA_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "NAGARSEVA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 7*24*time.Hour),
		CSRFKey:          appValues.String("csrf_key"),

		// Photo storage
		StorageType:        appValues.String("storage_type"),
		StorageLocalPath:   appValues.String("storage_local_path"),
		StorageLocalURL:    appValues.String("storage_local_url"),
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),
		MaxUploadMB:        appValues.Int("max_upload_mb"),

		// Rate limiting
		LimitStore:         appValues.String("limit_store"),
		RedisAddr:          appValues.String("redis_addr"),
		RedisPassword:      appValues.String("redis_password"),
		RedisDB:            appValues.Int("redis_db"),
		LimitMaxKeys:       appValues.Int("limit_max_keys"),
		RateGeneralLimit:   appValues.Int("rate_general_limit"),
		RateGeneralWindow:  appValues.Duration("rate_general_window", 15*time.Minute),
		RateAuthLimit:      appValues.Int("rate_auth_limit"),
		RateAuthWindow:     appValues.Duration("rate_auth_window", 15*time.Minute),
		RateSignupLimit:    appValues.Int("rate_signup_limit"),
		RateSignupWindow:   appValues.Duration("rate_signup_window", time.Hour),
		LockoutMaxAttempts: appValues.Int("lockout_max_attempts"),
		LockoutDuration:    appValues.Duration("lockout_duration", 15*time.Minute),
		TrustProxy:         appValues.String("trust_proxy"),

		// Accounts
		AllowAdminSignup: appValues.Bool("allow_admin_signup"),
		AdminUsername:    appValues.String("admin_username"),
		AdminEmail:       appValues.String("admin_email"),
		AdminPassword:    appValues.String("admin_password"),

		SeedAuthorities: appValues.Bool("seed_authorities"),
		SeedDemo:        appValues.Bool("seed_demo"),
		MetricsEnabled:  appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// minProdSessionKey is the shortest session key accepted in production.
const minProdSessionKey = 32

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env == "prod", appCfg)
}

// validateApp holds the checks that do not depend on WAFFLE core config.
func validateApp(prod bool, appCfg AppConfig) error {
	switch appCfg.StorageType {
	case StorageLocal:
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_local_path is required when storage_type is %q", StorageLocal)
		}
	case StorageS3:
		if appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_s3_bucket is required when storage_type is %q", StorageS3)
		}
	default:
		return fmt.Errorf("storage_type must be %q or %q, got %q", StorageLocal, StorageS3, appCfg.StorageType)
	}

	switch appCfg.LimitStore {
	case LimitStoreMemory:
	case LimitStoreRedis:
		if appCfg.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required when limit_store is %q", LimitStoreRedis)
		}
	default:
		return fmt.Errorf("limit_store must be %q or %q, got %q", LimitStoreMemory, LimitStoreRedis, appCfg.LimitStore)
	}

	if _, err := httpmw.ParseTrustedProxies(appCfg.TrustProxy); err != nil {
		return fmt.Errorf("trust_proxy: %w", err)
	}

	if appCfg.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", appCfg.MaxUploadMB)
	}

	if appCfg.AdminUsername != "" && appCfg.AdminPassword == "" {
		return fmt.Errorf("admin_password is required when admin_username is set")
	}

	if prod {
		if appCfg.SeedDemo {
			return fmt.Errorf("seed_demo must be off in production")
		}
		if len(appCfg.SessionKey) < minProdSessionKey {
			return fmt.Errorf("session_key must be at least %d characters in production", minProdSessionKey)
		}
		if appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
			return fmt.Errorf("session_key must be changed from the development default in production")
		}
	}
	return nil
}
