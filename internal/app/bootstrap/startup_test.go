package bootstrap

import (
	"context"
	"strings"
	"testing"

	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/blobstore"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		SessionKey:       strings.Repeat("k", 48),
		StorageType:      StorageLocal,
		StorageLocalPath: "./uploads",
		LimitStore:       LimitStoreMemory,
		MaxUploadMB:      10,
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		prod    bool
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "unknown storage", mutate: func(c *AppConfig) { c.StorageType = "ftp" }, wantErr: "storage_type"},
		{name: "s3 without bucket", mutate: func(c *AppConfig) { c.StorageType = StorageS3 }, wantErr: "storage_s3_bucket"},
		{name: "s3 with bucket", mutate: func(c *AppConfig) { c.StorageType = StorageS3; c.StorageS3Bucket = "photos" }},
		{name: "redis without addr", mutate: func(c *AppConfig) { c.LimitStore = LimitStoreRedis }, wantErr: "redis_addr"},
		{name: "unknown limit store", mutate: func(c *AppConfig) { c.LimitStore = "etcd" }, wantErr: "limit_store"},
		{name: "zero upload cap", mutate: func(c *AppConfig) { c.MaxUploadMB = 0 }, wantErr: "max_upload_mb"},
		{name: "admin without password", mutate: func(c *AppConfig) { c.AdminUsername = "root" }, wantErr: "admin_password"},
		{name: "trusted proxies", mutate: func(c *AppConfig) { c.TrustProxy = "10.0.0.0/8, 127.0.0.1" }},
		{name: "bad trusted proxy", mutate: func(c *AppConfig) { c.TrustProxy = "10.0.0.0/99" }, wantErr: "trust_proxy"},
		{name: "demo seed in dev", mutate: func(c *AppConfig) { c.SeedDemo = true }},
		{name: "demo seed in prod", prod: true, mutate: func(c *AppConfig) { c.SeedDemo = true }, wantErr: "seed_demo"},
		{name: "short key in dev", mutate: func(c *AppConfig) { c.SessionKey = "short" }},
		{name: "short key in prod", prod: true, mutate: func(c *AppConfig) { c.SessionKey = "short" }, wantErr: "session_key"},
		{name: "default key in prod", prod: true, mutate: func(c *AppConfig) {
			c.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
		}, wantErr: "development default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := validateApp(tt.prod, cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestCSRFKey_Is32Bytes(t *testing.T) {
	cfg := validAppConfig()
	if got := len(csrfKey(cfg)); got != 32 {
		t.Errorf("derived key length = %d, want 32", got)
	}

	cfg.CSRFKey = strings.Repeat("x", 32)
	if got := string(csrfKey(cfg)); got != cfg.CSRFKey {
		t.Error("a 32-byte csrf_key should be used as-is")
	}

	cfg.CSRFKey = "too-short"
	if got := len(csrfKey(cfg)); got != 32 {
		t.Errorf("short csrf_key should be stretched, got %d bytes", got)
	}
}

func TestConnectLimitStore_Memory(t *testing.T) {
	cfg := validAppConfig()
	cfg.LimitMaxKeys = 10

	rdb, store, mem := connectLimitStore(context.Background(), cfg, testLogger())
	if rdb != nil {
		t.Error("memory store should not open a Redis client")
	}
	if mem == nil || store != ratelimit.Store(mem) {
		t.Fatal("expected the in-memory store")
	}
	mem.Close()
}

func TestConnectLimitStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := validAppConfig()
	cfg.LimitStore = LimitStoreRedis
	cfg.RedisAddr = mr.Addr()

	rdb, store, mem := connectLimitStore(context.Background(), cfg, testLogger())
	if rdb == nil {
		t.Fatal("expected a Redis client")
	}
	defer rdb.Close()
	if mem != nil {
		t.Error("memory store should not be created when Redis answers")
	}
	if _, ok := store.(*ratelimit.RedisStore); !ok {
		t.Fatalf("store = %T, want *ratelimit.RedisStore", store)
	}
}

func TestConnectLimitStore_RedisDownFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := validAppConfig()
	cfg.LimitStore = LimitStoreRedis
	cfg.RedisAddr = addr
	cfg.LimitMaxKeys = 10

	rdb, store, mem := connectLimitStore(context.Background(), cfg, testLogger())
	if rdb != nil {
		t.Error("unreachable Redis should not be returned")
	}
	if mem == nil || store != ratelimit.Store(mem) {
		t.Fatal("expected fallback to the in-memory store")
	}
	mem.Close()
}

func TestOpenBlobStore_Local(t *testing.T) {
	cfg := validAppConfig()
	cfg.StorageLocalPath = t.TempDir()
	cfg.StorageLocalURL = "/uploads"

	s, err := openBlobStore(cfg, testLogger())
	if err != nil {
		t.Fatalf("openBlobStore: %v", err)
	}
	local, ok := s.(*blobstore.Local)
	if !ok {
		t.Fatalf("store = %T, want *blobstore.Local", s)
	}
	if local.URLPrefix() != "/uploads" {
		t.Errorf("URLPrefix = %q", local.URLPrefix())
	}
}

func TestSeedAuthorities_OnlyWhenEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := seedAuthorities(ctx, db, testLogger()); err != nil {
		t.Fatalf("seedAuthorities: %v", err)
	}
	if err := seedAuthorities(ctx, db, testLogger()); err != nil {
		t.Fatalf("second seedAuthorities: %v", err)
	}

	n, err := db.Collection("authorities").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != int64(len(models.DefaultAuthorities)) {
		t.Errorf("authorities = %d, want %d", n, len(models.DefaultAuthorities))
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := validAppConfig()
	cfg.AdminUsername = "cityadmin"
	cfg.AdminEmail = "admin@nagarseva.test"
	cfg.AdminPassword = "Civic@1Admin"

	if err := ensureBootstrapAdmin(ctx, db, cfg, testLogger()); err != nil {
		t.Fatalf("ensureBootstrapAdmin: %v", err)
	}
	// Idempotent.
	if err := ensureBootstrapAdmin(ctx, db, cfg, testLogger()); err != nil {
		t.Fatalf("second ensureBootstrapAdmin: %v", err)
	}

	users := userstore.New(db)
	u, err := users.Authenticate(ctx, "CityAdmin", "Civic@1Admin")
	if err != nil {
		t.Fatalf("admin cannot log in: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", u.Role)
	}

	n, _ := db.Collection("users").CountDocuments(ctx, bson.M{})
	if n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
}

func TestEnsureBootstrapAdmin_NoUsernameIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureBootstrapAdmin(ctx, db, validAppConfig(), testLogger()); err != nil {
		t.Fatalf("ensureBootstrapAdmin: %v", err)
	}
	n, _ := db.Collection("users").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("users = %d, want 0", n)
	}
}
