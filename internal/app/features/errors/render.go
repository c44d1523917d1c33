// internal/app/features/errors/render.go
package errors

import (
	"net/http"
	"net/url"

	"github.com/dalemusser/waffle/pantry/httpnav"
)

// RenderUnauthorized sends the visitor to the login page, remembering where
// they were going.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", LoginURL(r))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
}

// LoginURL is /login?return=<current request URI>.
func LoginURL(r *http.Request) string {
	return "/login?return=" + url.QueryEscape(r.URL.RequestURI())
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderNotFound shows the 404 page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest shows the 400 page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "Invalid request", msg, backURL)
}

// RenderServerError shows the 500 page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}
