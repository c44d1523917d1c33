// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles POST (and GET) /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	name := ""
	if u, ok := auth.CurrentUser(r); ok {
		name = u.Name
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if err := h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "You have been logged out."); err != nil {
		h.Log.Warn("flash: save session", zap.Error(err))
	}
	h.Log.Info("user logged out", zap.String("username", name))

	// HTMX handling: use HX-Redirect to force a full navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/listings")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/listings", http.StatusSeeOther)
}
