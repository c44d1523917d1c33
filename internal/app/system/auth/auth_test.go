package auth_test

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / Name: The username users type to log in

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/data", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}

	hxRedirect := rec.Header().Get("HX-Redirect")
	if !strings.HasPrefix(hxRedirect, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hxRedirect)
	}
}

func TestRequireRole_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireRole_WrongRole_RedirectsToForbidden(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Create a request with a citizen user in context
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Accept", "text/html")

	// Inject a user with "user" role into context
	req = withTestUser(req, "user")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if location != "/forbidden" {
		t.Errorf("expected redirect to /forbidden, got %q", location)
	}
}

func TestRequireRole_WrongRole_API_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/admin", nil)
	req.Header.Set("Accept", "application/json")
	req = withTestUser(req, "user")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_CorrectRole_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req = withTestUser(req, "admin")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin", "moderator")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		role     string
		expected int
	}{
		{"admin", http.StatusOK},
		{"moderator", http.StatusOK},
		{"user", http.StatusSeeOther}, // redirect to forbidden
		{"guest", http.StatusSeeOther},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/reports", nil)
			req.Header.Set("Accept", "text/html")
			req = withTestUser(req, tc.role)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expected {
				t.Errorf("role %q: expected status %d, got %d", tc.role, tc.expected, rec.Code)
			}
		})
	}
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Test with uppercase role
	req := httptest.NewRequest("GET", "/admin", nil)
	req = withTestUser(req, "ADMIN")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for uppercase role, got %d", http.StatusOK, rec.Code)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

func TestCurrentUser_WithUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = withTestUser(req, "admin")

	user, ok := auth.CurrentUser(req)

	if !ok {
		t.Error("expected ok to be true when user in context")
	}
	if user == nil {
		t.Fatal("expected user to not be nil")
	}
	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
}

// withTestUser injects a SessionUser into the request context for testing.
// This simulates what LoadSessionUser middleware does.
func withTestUser(r *http.Request, role string) *http.Request {
	user := &auth.SessionUser{
		ID:      "507f1f77bcf86cd799439011", // Valid ObjectID hex
		Name:    "Test User",
		LoginID: "test@example.com",
		Role:    role,
	}
	return auth.WithTestUser(r, user)
}

type stubFetcher struct {
	user *auth.SessionUser
	err  error
}

func (f stubFetcher) FetchSessionUser(_ context.Context, _ string) (*auth.SessionUser, error) {
	return f.user, f.err
}

// signedInCookie signs a user in against sm and returns the resulting cookie.
func signedInCookie(t *testing.T, sm *auth.SessionManager, u auth.SessionUser) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest("POST", "/login", nil)
	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, req, u); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	return cookies[0]
}

func TestLoadSessionUser_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := signedInCookie(t, sm, auth.SessionUser{
		ID:   "507f1f77bcf86cd799439011",
		Name: "asha",
		Role: "user",
	})

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/listings", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != "507f1f77bcf86cd799439011" || got.Name != "asha" || got.Role != "user" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestLoadSessionUser_ForgedCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)

	// Same payload a real sign-in writes, signed with the wrong key.
	forger := securecookie.New([]byte("some-other-key-that-is-32-chars!!"), nil)
	values := map[interface{}]interface{}{
		auth.SessionKeyAuthenticated: true,
		auth.SessionKeyUserID:        "507f1f77bcf86cd799439011",
		auth.SessionKeyUserRole:      "admin",
	}
	encoded, err := forger.Encode(sm.Name(), values)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var signedIn bool
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sm.Name(), Value: encoded})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if signedIn {
		t.Fatal("a cookie signed with another key must not authenticate")
	}
}

func TestLoadSessionUser_FetcherRefreshesRole(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := signedInCookie(t, sm, auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "asha", Role: "user"})
	sm.SetUserFetcher(stubFetcher{user: &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "asha", Role: "admin"}})

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != "admin" {
		t.Errorf("expected refreshed admin role, got %+v", got)
	}
}

func TestLoadSessionUser_DeletedUserIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := signedInCookie(t, sm, auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "asha", Role: "user"})
	sm.SetUserFetcher(stubFetcher{})

	found := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("expected no user in context for a deleted account")
	}
}

func TestLoadSessionUser_FetcherErrorKeepsSessionUser(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := signedInCookie(t, sm, auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "asha", Role: "user"})
	sm.SetUserFetcher(stubFetcher{err: errors.New("db down")})

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Name != "asha" {
		t.Errorf("expected cached session user, got %+v", got)
	}
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := signedInCookie(t, sm, auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "asha", Role: "user"})

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected an expiring cookie")
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("expected negative MaxAge, got %d", cookies[0].MaxAge)
	}
}

func TestNewSessionManager_RejectsEmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestFlashes_SurviveOneRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/listings", nil)
	if err := sm.AddFlash(rec, req, auth.FlashSuccess, "New complaint registered!"); err != nil {
		t.Fatalf("AddFlash failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	cookie := cookies[len(cookies)-1]

	var got []auth.Flash
	handler := sm.LoadFlashes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.Flashes(r)
	}))

	req = httptest.NewRequest("GET", "/listings", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if len(got) != 1 || got[0].Kind != auth.FlashSuccess || got[0].Message != "New complaint registered!" {
		t.Fatalf("unexpected flashes: %+v", got)
	}

	// The popped session is written back without the flash.
	next := rec.Result().Cookies()
	if len(next) == 0 {
		t.Fatal("expected the session to be re-saved")
	}
	req = httptest.NewRequest("GET", "/listings", nil)
	req.AddCookie(next[len(next)-1])
	got = nil
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if len(got) != 0 {
		t.Errorf("flash shown twice: %+v", got)
	}
}

func TestFlashes_NoneWithoutSession(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.LoadFlashes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if f := auth.Flashes(r); f != nil {
			t.Errorf("expected no flashes, got %+v", f)
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !called {
		t.Error("next handler not called")
	}
}

func TestAddFlash_AfterSignOutKeepsNoticeOnly(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := signedInCookie(t, sm, auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "asha", Role: "user"})

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if err := sm.AddFlash(rec, req, auth.FlashSuccess, "You have been logged out."); err != nil {
		t.Fatalf("AddFlash failed: %v", err)
	}

	cookies := rec.Result().Cookies()
	last := cookies[len(cookies)-1]
	if last.MaxAge < 0 {
		t.Fatalf("final cookie should be live, got MaxAge %d", last.MaxAge)
	}

	var (
		flashes []auth.Flash
		signed  bool
	)
	handler := sm.LoadSessionUser(sm.LoadFlashes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flashes = auth.Flashes(r)
		_, signed = auth.CurrentUser(r)
	})))
	next := httptest.NewRequest("GET", "/listings", nil)
	next.AddCookie(last)
	handler.ServeHTTP(httptest.NewRecorder(), next)

	if signed {
		t.Error("user still signed in after SignOut")
	}
	if len(flashes) != 1 || flashes[0].Message != "You have been logged out." {
		t.Errorf("unexpected flashes: %+v", flashes)
	}
}
