// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. ok=true means a valid, authenticated user
// with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// Principal returns the signed-in user's id and typed role.
func Principal(r *http.Request) (primitive.ObjectID, models.Role, bool) {
	roleStr, _, id, ok := UserCtx(r)
	if !ok {
		return primitive.NilObjectID, models.RoleUser, false
	}
	role, _ := models.ParseRole(roleStr)
	return id, role, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	_, role, ok := Principal(r)
	return ok && role.IsAdmin()
}

// CanManageTracking reports whether the user may append tracking entries.
func CanManageTracking(r *http.Request) bool {
	_, role, ok := Principal(r)
	return ok && role.CanManageTracking()
}

// CanEditListing reports whether the user may edit l's descriptive fields.
// Only the author can.
func CanEditListing(r *http.Request, l models.Listing) bool {
	id, _, ok := Principal(r)
	return ok && l.IsAuthor(id)
}

// CanDeleteListing reports whether the user may delete l: its author or an admin.
func CanDeleteListing(r *http.Request, l models.Listing) bool {
	id, role, ok := Principal(r)
	if !ok {
		return false
	}
	return l.IsAuthor(id) || role.CanDeleteAny()
}
