// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging level and request body limits. Everything specific to NagarSeva
// lives here and is passed to each lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: nagarseva-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRF protection
	CSRFKey string // 32-byte key for gorilla/csrf; blank derives one from SessionKey

	// Complaint photo storage
	StorageType      string // "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/uploads")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string // Key prefix (e.g., "nagarseva/")
	StorageS3Endpoint  string // Custom endpoint for S3-compatible stores (MinIO, R2)
	StorageS3PublicURL string // Public base URL (CDN) for stored photos
	MaxUploadMB        int    // Complaint form size cap including the photo

	// Rate limiting and lockout
	LimitStore         string // "memory" or "redis"
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	LimitMaxKeys       int // Bound on tracked keys for the memory store
	RateGeneralLimit   int
	RateGeneralWindow  time.Duration
	RateAuthLimit      int
	RateAuthWindow     time.Duration
	RateSignupLimit    int
	RateSignupWindow   time.Duration
	LockoutMaxAttempts int
	LockoutDuration    time.Duration
	TrustProxy         string // Comma-separated proxy IPs/CIDRs whose X-Real-IP is believed

	// Accounts
	AllowAdminSignup bool   // Let the signup form create administrators
	AdminUsername    string // Bootstrap admin created at startup when set
	AdminEmail       string
	AdminPassword    string

	// Seeding and observability
	SeedAuthorities bool // Insert the default authority directory into an empty collection
	SeedDemo        bool // Insert demo accounts and complaints into an empty database (not allowed in prod)
	MetricsEnabled  bool // Expose Prometheus metrics at /metrics
}

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Limiter stores.
const (
	LimitStoreMemory = "memory"
	LimitStoreRedis  = "redis"
)
