// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username: The human-readable string users type to log in

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/errors"
	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/inputval"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/metrics"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	msgLocked       = "Account temporarily locked due to multiple failed attempts. Please try again later."
	msgNotAdmin     = "You are not authorized as admin."
	msgUseAdmin     = "Please login as admin."
	msgWelcomeAdmin = "Welcome Admin!"
	msgWelcomeBack  = "Welcome back!"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Lockout    *ratelimit.Lockout // nil disables account lockout
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, lockout *ratelimit.Lockout, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Lockout:    lockout,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Username  string
	LoginType string
	ReturnURL string
}

// loginInput defines validation rules for the login form.
type loginInput struct {
	Username  string `validate:"required,min=3,max=30,username" label:"Username"`
	Password  string `validate:"required,max=128" label:"Password"`
	LoginType string `validate:"omitempty,oneof=user admin" label:"Login type"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	loginType := query.Get(r, "type")
	if loginType != string(models.RoleAdmin) {
		loginType = string(models.RoleUser)
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Log in", "/"),
		LoginType: loginType,
		ReturnURL: query.Get(r, "return"),
	})
}

// ServeAdminLogin handles GET /admin/login, kept for old links.
func (h *Handler) ServeAdminLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	in := loginInput{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Password:  r.FormValue("password"),
		LoginType: strings.TrimSpace(r.FormValue("loginType")),
	}
	ret := r.FormValue("return")
	ip := ratelimit.ClientIP(r)

	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, r, res.First(), ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Lockout != nil {
		locked, err := h.Lockout.Locked(ctx, in.Username)
		if err != nil {
			h.Log.Warn("lockout check failed; continuing", zap.String("username", in.Username), zap.Error(err))
		}
		if locked {
			metrics.Logins.WithLabelValues(metrics.LoginLocked).Inc()
			h.Log.Warn("locked account login attempt", zap.String("username", in.Username), zap.String("ip", ip))
			h.fail(w, r, msgLocked, ret)
			return
		}
	}

	u, err := h.Users.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindAuthentication {
			h.ErrLog.LogServerError(w, r, "authenticate failed", err, "A database error occurred.", "/login")
			return
		}
		metrics.Logins.WithLabelValues(metrics.LoginFailure).Inc()
		h.Log.Info("failed login attempt", zap.String("username", in.Username), zap.String("ip", ip))
		h.recordFailure(ctx, in.Username)
		h.fail(w, r, apperr.Message(err, "Invalid username or password."), ret)
		return
	}

	// The chosen login type must match the account's role.
	wantAdmin := in.LoginType == string(models.RoleAdmin)
	if wantAdmin != u.Role.IsAdmin() {
		metrics.Logins.WithLabelValues(metrics.LoginRoleMismatch).Inc()
		msg := msgUseAdmin
		if wantAdmin {
			msg = msgNotAdmin
		}
		h.fail(w, r, msg, ret)
		return
	}

	if h.Lockout != nil {
		if err := h.Lockout.Reset(ctx, in.Username); err != nil {
			h.Log.Warn("lockout reset failed", zap.String("username", in.Username), zap.Error(err))
		}
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.Username,
		LoginID: u.Username,
		Role:    string(u.Role),
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Could not sign you in. Please try again.", "/login")
		return
	}

	metrics.Logins.WithLabelValues(metrics.LoginSuccess).Inc()
	h.Log.Info("successful login",
		zap.String("username", u.Username),
		zap.String("role", string(u.Role)),
		zap.String("ip", ip))

	welcome := msgWelcomeBack
	if u.Role.IsAdmin() {
		welcome = msgWelcomeAdmin
	}
	h.flash(w, r, auth.FlashSuccess, welcome)
	http.Redirect(w, r, authz.LandingPath(u.Role, ret), http.StatusSeeOther)
}

func (h *Handler) recordFailure(ctx context.Context, username string) {
	if h.Lockout == nil {
		return
	}
	locked, err := h.Lockout.RecordFailure(ctx, username)
	if err != nil {
		h.Log.Warn("lockout record failed", zap.String("username", username), zap.Error(err))
		return
	}
	if locked {
		h.Log.Warn("account locked after repeated failures", zap.String("username", username))
	}
}

// fail flashes msg and sends the browser back to the login form.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg, ret string) {
	h.flash(w, r, auth.FlashError, msg)
	target := "/login"
	if ret != "" {
		target += "?return=" + url.QueryEscape(ret)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.SessionMgr.AddFlash(w, r, kind, msg); err != nil {
		h.Log.Warn("flash: save session", zap.Error(err))
	}
}
