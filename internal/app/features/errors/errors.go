// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/")
}

// NotFound renders the 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "Page not found.", "/listings")
}

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backURL),
		Status:  status,
		Message: msg,
	}
	if backURL != "" {
		data.BackURL = backURL
	}

	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
