package login_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/errors"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/login"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	store := ratelimit.NewMemoryStore(0, 0)
	t.Cleanup(store.Close)
	lockout := ratelimit.NewLockout(store, 5, 15*time.Minute)

	return login.NewHandler(db, sessionMgr, errLog, lockout, logger), testutil.NewFixtures(t, db)
}

func post(h *login.Handler, form url.Values) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, testutil.NewFormRequest("POST", "/login", form.Encode()))
	return rec
}

func hasSessionCookie(rec *testutil.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}

func TestHandleLoginPost_CitizenSuccess(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCitizen(ctx, "asha")

	rec := post(h, url.Values{
		"username":  {"asha"},
		"password":  {testutil.TestPassword},
		"loginType": {"user"},
	})
	rec.AssertRedirect(t, "/listings")
	if !hasSessionCookie(rec) {
		t.Error("expected session cookie to be set")
	}
}

func TestHandleLoginPost_UsernameIsCaseInsensitive(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCitizen(ctx, "Asha")

	rec := post(h, url.Values{"username": {"ASHA"}, "password": {testutil.TestPassword}, "loginType": {"user"}})
	rec.AssertRedirect(t, "/listings")
}

func TestHandleLoginPost_ReturnURL(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCitizen(ctx, "asha")

	rec := post(h, url.Values{
		"username":  {"asha"},
		"password":  {testutil.TestPassword},
		"loginType": {"user"},
		"return":    {"/listings/new"},
	})
	rec.AssertRedirect(t, "/listings/new")
}

func TestHandleLoginPost_AdminLandsOnDashboard(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateAdmin(ctx, "boss")

	rec := post(h, url.Values{
		"username":  {"boss"},
		"password":  {testutil.TestPassword},
		"loginType": {"admin"},
		"return":    {"/listings/new"},
	})
	rec.AssertRedirect(t, "/admin/dashboard")
}

func TestHandleLoginPost_LoginTypeMustMatchRole(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCitizen(ctx, "asha")
	fx.CreateAdmin(ctx, "boss")

	tests := []struct {
		username, loginType string
	}{
		{"asha", "admin"},
		{"boss", "user"},
	}
	for _, tt := range tests {
		rec := post(h, url.Values{"username": {tt.username}, "password": {testutil.TestPassword}, "loginType": {tt.loginType}})
		rec.AssertRedirect(t, "/login")
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCitizen(ctx, "asha")

	rec := post(h, url.Values{"username": {"asha"}, "password": {"Wr0ng@Pass"}, "loginType": {"user"}, "return": {"/listings/new"}})
	rec.AssertRedirect(t, "/login?return="+url.QueryEscape("/listings/new"))
}

func TestHandleLoginPost_UnknownUser(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := post(h, url.Values{"username": {"nobody"}, "password": {testutil.TestPassword}, "loginType": {"user"}})
	rec.AssertRedirect(t, "/login")
}

func TestHandleLoginPost_InvalidInput(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, form := range []url.Values{
		{"username": {""}, "password": {"x"}},
		{"username": {"ab"}, "password": {"x"}},
		{"username": {"bad name!"}, "password": {"x"}},
		{"username": {"asha"}, "password": {"x"}, "loginType": {"root"}},
	} {
		rec := post(h, form)
		rec.AssertRedirect(t, "/login")
	}
}

func TestHandleLoginPost_LocksAfterRepeatedFailures(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCitizen(ctx, "asha")

	bad := url.Values{"username": {"asha"}, "password": {"Wr0ng@Pass"}, "loginType": {"user"}}
	for i := 0; i < 5; i++ {
		post(h, bad)
	}

	locked, err := h.Lockout.Locked(ctx, "asha")
	if err != nil {
		t.Fatalf("Locked: %v", err)
	}
	if !locked {
		t.Fatal("expected account to be locked after 5 failures")
	}

	// Even the right password is refused while locked.
	rec := post(h, url.Values{"username": {"asha"}, "password": {testutil.TestPassword}, "loginType": {"user"}})
	rec.AssertRedirect(t, "/login")
}

func TestHandleLoginPost_SuccessResetsFailures(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCitizen(ctx, "asha")

	bad := url.Values{"username": {"asha"}, "password": {"Wr0ng@Pass"}, "loginType": {"user"}}
	good := url.Values{"username": {"asha"}, "password": {testutil.TestPassword}, "loginType": {"user"}}

	for i := 0; i < 4; i++ {
		post(h, bad)
	}
	post(h, good).AssertRedirect(t, "/listings")
	for i := 0; i < 4; i++ {
		post(h, bad)
	}
	post(h, good).AssertRedirect(t, "/listings")
}

func TestServeAdminLogin_Redirects(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	h.ServeAdminLogin(rec, testutil.NewRequest("GET", "/admin/login"))
	rec.AssertRedirect(t, "/login")
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
}
