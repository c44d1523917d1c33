// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/errors"
	authoritystore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/authorities"
	listingstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/listings"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Listings    *listingstore.Store
	Authorities *authoritystore.Store
	SessionMgr  *auth.SessionManager
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Listings:    listingstore.New(db),
		Authorities: authoritystore.New(db),
		SessionMgr:  sessionMgr,
		ErrLog:      errLog,
		Log:         logger,
	}
}

// ServeDashboard sends each role to its own dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := authz.Principal(r); !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if authz.IsAdmin(r) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/user/dashboard", http.StatusSeeOther)
}

func (h *Handler) flashError(w http.ResponseWriter, r *http.Request, msg string) {
	if h.SessionMgr == nil {
		return
	}
	if err := h.SessionMgr.AddFlash(w, r, auth.FlashError, msg); err != nil {
		h.Log.Warn("flash: save session", zap.Error(err))
	}
}
