// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of principal kinds.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleAdmin}

// ParseRole maps a stored or submitted string onto a Role. Unknown values
// fall back to RoleUser with ok=false.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	}
	return RoleUser, false
}

// IsAdmin reports whether the role carries administrator capability.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanManageTracking reports whether the role may append tracking entries
// and assign authorities.
func (r Role) CanManageTracking() bool { return r == RoleAdmin }

// CanDeleteAny reports whether the role may delete complaints it did not author.
func (r Role) CanDeleteAny() bool { return r == RoleAdmin }

// User is a registered citizen or administrator.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"` // folded for lookup
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
