// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/errors"
	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/inputval"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/ratelimit"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/timeouts"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var errAdminSignupClosed = apperr.Authorization("Administrator accounts cannot be created from this page.")

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	// AllowAdmin lets the signup form create administrator accounts.
	AllowAdmin bool
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, allowAdmin bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
		AllowAdmin: allowAdmin,
	}
}

type formData struct {
	viewdata.BaseVM
	Error      string
	Username   string
	Email      string
	SignupType string
	AllowAdmin bool
	ReturnURL  string
}

// signupInput defines validation rules for registration.
type signupInput struct {
	Username   string `validate:"required,min=3,max=30,username" label:"Username"`
	Email      string `validate:"required,email,max=254" label:"Email"`
	Password   string `validate:"required,strongpassword,notcommon" label:"Password"`
	SignupType string `validate:"omitempty,oneof=user admin" label:"Account type"`
}

// ServeSignup handles GET /signup.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, formData{
		BaseVM:     viewdata.NewBaseVM(r, "Sign up", "/"),
		SignupType: string(models.RoleUser),
		ReturnURL:  query.Get(r, "return"),
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, fd formData) {
	fd.AllowAdmin = h.AllowAdmin
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "signup", fd)
}

// HandleSignup handles POST /signup. The new account is signed in at once.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	in := signupInput{
		Username:   strings.TrimSpace(r.FormValue("username")),
		Email:      strings.TrimSpace(r.FormValue("email")),
		Password:   r.FormValue("password"),
		SignupType: strings.TrimSpace(r.FormValue("signupType")),
	}
	fd := formData{
		BaseVM:     viewdata.NewBaseVM(r, "Sign up", "/"),
		Username:   in.Username,
		Email:      in.Email,
		SignupType: in.SignupType,
		ReturnURL:  r.FormValue("return"),
	}

	if res := inputval.Validate(in); res.HasErrors() {
		fd.Error = res.First()
		h.render(w, r, http.StatusBadRequest, fd)
		return
	}

	role := models.RoleUser
	if in.SignupType == string(models.RoleAdmin) {
		if !h.AllowAdmin {
			h.Log.Warn("admin signup refused",
				zap.String("username", in.Username),
				zap.String("ip", ratelimit.ClientIP(r)))
			fd.Error = apperr.Message(errAdminSignupClosed, "")
			h.render(w, r, http.StatusForbidden, fd)
			return
		}
		role = models.RoleAdmin
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.NewUser{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateUsername) || errors.Is(err, userstore.ErrDuplicateEmail) || apperr.KindOf(err) == apperr.KindValidation {
			fd.Error = apperr.Message(err, "Invalid input.")
			h.render(w, r, http.StatusBadRequest, fd)
			return
		}
		h.ErrLog.LogServerError(w, r, "create user failed", err, "A database error occurred.", "/signup")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.Username,
		LoginID: u.Username,
		Role:    string(u.Role),
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Your account was created but we could not sign you in. Please log in.", "/login")
		return
	}

	h.Log.Info("new user registered",
		zap.String("username", u.Username),
		zap.String("role", string(u.Role)),
		zap.String("ip", ratelimit.ClientIP(r)))

	welcome := "Welcome to NagarSeva!"
	if u.Role.IsAdmin() {
		welcome = "Welcome Admin to NagarSeva!"
	}
	if err := h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, welcome); err != nil {
		h.Log.Warn("flash: save session", zap.Error(err))
	}
	http.Redirect(w, r, authz.LandingPath(u.Role, fd.ReturnURL), http.StatusSeeOther)
}
