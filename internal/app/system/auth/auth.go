package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userRole  = "user_role"
)

// Session value keys, exported so the login handler writes the same keys the
// middleware reads.
const (
	SessionKeyAuthenticated = isAuthKey
	SessionKeyUserID        = userIDKey
	SessionKeyUserName      = userName
	SessionKeyUserRole      = userRole
)

// SessionUser is what we cache in the session & inject into r.Context().
type SessionUser struct {
	ID      string
	Name    string
	LoginID string
	Role    string
}

// UserFetcher loads the current state of a user by id. It returns (nil, nil)
// when the user no longer exists.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error)
}

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store       *sessions.CookieStore
	sessionName string
	fetcher     UserFetcher
	logger      *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=Strict.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		return nil, errors.New("session name is empty")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("session max age must be positive, got %s", maxAge)
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		opts.SameSite = http.SameSiteStrictMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{
		store:       store,
		sessionName: name,
		logger:      logger,
	}, nil
}

// SetUserFetcher makes LoadSessionUser refresh name and role from storage on
// every request, so role changes and deleted accounts take effect at once.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// Store exposes the underlying cookie store.
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// Name is the cookie name.
func (sm *SessionManager) Name() string {
	return sm.sessionName
}

// GetSession returns the session for this request. A decode failure (rotated
// key, tampered cookie) yields a fresh session together with the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.sessionName)
}

// logSessionErr reports a GetSession failure. An undecodable cookie (rotated
// key, tampering) is routine; anything else is a store problem.
func (sm *SessionManager) logSessionErr(err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}
	fields = append(fields, zap.Error(err))
	var scErr securecookie.Error
	if errors.As(err, &scErr) && scErr.IsDecode() {
		sm.logger.Debug(msg+": cookie invalid, using fresh session", fields...)
		return
	}
	sm.logger.Warn(msg+": session store error, using fresh session", fields...)
}

// SignIn stores the user in a fresh session and saves it.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, err := sm.GetSession(r)
	sm.logSessionErr(err, "sign in", zap.String("user_id", u.ID))
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userRole] = u.Role
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.GetSession(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a notice for the next page the browser loads. Called
// after SignOut it revives the emptied cookie so the notice still arrives.
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	sess, _ := sm.GetSession(r)
	if sess.Options != nil && sess.Options.MaxAge < 0 && sm.store.Options != nil {
		opts := *sm.store.Options
		sess.Options = &opts
	}
	sess.AddFlash(kind + "|" + msg)
	return sess.Save(r, w)
}

// LoadFlashes pops queued notices off the session and puts them in the
// request context for the page being rendered.
func (sm *SessionManager) LoadFlashes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := sess.Flashes()
		if len(raw) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		if err := sess.Save(r, w); err != nil {
			sm.logger.Warn("flash: save session", zap.Error(err))
		}

		flashes := make([]Flash, 0, len(raw))
		for _, v := range raw {
			s, ok := v.(string)
			if !ok {
				continue
			}
			kind, msg, found := strings.Cut(s, "|")
			if !found {
				kind, msg = FlashSuccess, s
			}
			flashes = append(flashes, Flash{Kind: kind, Message: msg})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), flashesKey, flashes)))
	})
}

// Flashes returns the notices loaded by LoadFlashes.
func Flashes(r *http.Request) []Flash {
	f, _ := r.Context().Value(flashesKey).([]Flash)
	return f
}

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context the way LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// LoadSessionUser injects the user into context if they are logged in.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			sm.logSessionErr(err, "load session user")
			next.ServeHTTP(w, r)
			return
		}

		isAuth, _ := sess.Values[isAuthKey].(bool)
		if !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:   getString(sess, userIDKey),
			Name: getString(sess, userName),
			Role: getString(sess, userRole),
		}
		u.LoginID = u.Name

		if sm.fetcher != nil && u.ID != "" {
			fresh, err := sm.fetcher.FetchSessionUser(r.Context(), u.ID)
			switch {
			case err != nil:
				sm.logger.Warn("session user refresh failed",
					zap.String("user_id", u.ID), zap.Error(err))
			case fresh == nil:
				// Account is gone; treat the request as anonymous.
				next.ServeHTTP(w, r)
				return
			default:
				u = fresh
			}
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures there is a user with one of the given roles in context.
// Role comparison is case-insensitive.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w, r)
				return
			}

			if _, has := set[strings.ToLower(u.Role)]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}

	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

type ctxKey string

const (
	currentUserKey ctxKey = "currentUser"
	flashesKey     ctxKey = "flashes"
)

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
