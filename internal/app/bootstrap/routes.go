// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	citystatsfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/citystats"
	dashboardfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/dashboard"
	errorsfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/errors"
	healthfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/health"
	homefeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/home"
	listingsfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/listings"
	loginfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/login"
	logoutfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/logout"
	signupfeature "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/signup"
	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/blobstore"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/httpmw"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/metrics"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Middleware order, outermost first: request id, trusted-proxy client ip,
// panic recovery, access log, security headers, metrics, general rate limit,
// CSRF, session user, flashes.
// Health, metrics and static assets sit outside the rate limit and CSRF.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	prod := coreCfg.Env == "prod"
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, prod, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Role changes and deleted accounts take effect on the next request.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	generalLimiter := ratelimit.New(deps.LimitStore, "general", appCfg.RateGeneralLimit, appCfg.RateGeneralWindow)
	authLimiter := ratelimit.New(deps.LimitStore, "auth", appCfg.RateAuthLimit, appCfg.RateAuthWindow)
	signupLimiter := ratelimit.New(deps.LimitStore, "signup", appCfg.RateSignupLimit, appCfg.RateSignupWindow)
	lockout := ratelimit.NewLockout(deps.LimitStore, appCfg.LockoutMaxAttempts, appCfg.LockoutDuration)

	proxies, err := httpmw.ParseTrustedProxies(appCfg.TrustProxy)
	if err != nil {
		logger.Error("trust_proxy invalid", zap.Error(err))
		return nil, err
	}

	csrfMW := csrf.Protect(csrfKey(appCfg),
		csrf.Secure(prod),
		csrf.Path("/"),
		csrf.FieldName(viewdata.CSRFFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf rejected",
				zap.String("path", r.URL.Path),
				zap.String("reason", errString(csrf.FailureReason(r))))
			errorsHandler.Forbidden(w, r)
		})),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httpmw.TrustedRealIP(proxies))
	r.Use(middleware.Recoverer)
	r.Use(httpmw.RequestLogger(logger))
	r.Use(httpmw.SecurityHeaders(prod))
	r.Use(metrics.Middleware)

	// Set before mounting so subrouters inherit it.
	r.NotFound(errorsHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Locally stored complaint photos. S3 photos are served by the bucket.
	if local, ok := deps.Blobs.(*blobstore.Local); ok {
		r.Handle(local.URLPrefix()+"/*", fileserver.Handler(local.URLPrefix(), local.Root()))
	}

	r.Group(func(app chi.Router) {
		app.Use(generalLimiter.Middleware(logger))
		if prod {
			app.Use(csrfMW)
		} else {
			// gorilla/csrf assumes HTTPS unless told otherwise.
			app.Use(plaintextHTTP, csrfMW)
		}
		app.Use(sessionMgr.LoadSessionUser)
		app.Use(sessionMgr.LoadFlashes)

		homeHandler := homefeature.NewHandler(db, logger)
		app.Mount("/", homefeature.Routes(homeHandler))

		listingsHandler := listingsfeature.NewHandler(db, deps.Blobs, sessionMgr, errLog, int64(appCfg.MaxUploadMB)<<20, logger)
		app.Mount("/listings", listingsfeature.Routes(listingsHandler, sessionMgr))

		// Authentication
		loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, lockout, logger)
		app.Mount("/login", loginfeature.Routes(loginHandler, authLimiter))
		app.Get("/admin/login", loginHandler.ServeAdminLogin)

		signupHandler := signupfeature.NewHandler(db, sessionMgr, errLog, appCfg.AllowAdminSignup, logger)
		app.Mount("/signup", signupfeature.Routes(signupHandler, signupLimiter))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		app.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Role-based dashboards
		dashboardHandler := dashboardfeature.NewHandler(db, sessionMgr, errLog, logger)
		app.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))
		app.Mount("/user", dashboardfeature.UserRoutes(dashboardHandler, sessionMgr))
		app.Mount("/admin", dashboardfeature.AdminRoutes(dashboardHandler, sessionMgr))

		// JSON API
		cityStatsHandler := citystatsfeature.NewHandler(db, logger)
		app.Mount("/api", citystatsfeature.Routes(cityStatsHandler))

		// Error pages
		app.Get("/forbidden", errorsHandler.Forbidden)
	})

	logger.Info("routes mounted",
		zap.Bool("metrics", appCfg.MetricsEnabled),
		zap.Bool("admin_signup", appCfg.AllowAdminSignup))
	return r, nil
}

// csrfKey returns the configured CSRF key, or a 32-byte key derived from the
// session key when none is set.
func csrfKey(appCfg AppConfig) []byte {
	if len(appCfg.CSRFKey) == 32 {
		return []byte(appCfg.CSRFKey)
	}
	src := appCfg.CSRFKey
	if src == "" {
		src = "csrf:" + appCfg.SessionKey
	}
	sum := sha256.Sum256([]byte(src))
	return sum[:]
}

func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
