// internal/app/system/authz/roles.go
package authz

import (
	"net/http"
	"strings"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, ok := Role(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Role returns the current user's role (lowercased) and whether a user is present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}

// LandingPath is where a user goes right after signing in or signing up.
// Admins always land on the dashboard; everyone else returns to ret when it
// is a safe local path, else the complaint list.
func LandingPath(role models.Role, ret string) string {
	if role.IsAdmin() {
		return "/admin/dashboard"
	}
	return urlutil.SafeReturn(ret, "", "/listings")
}
