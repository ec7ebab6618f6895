package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// NormalizeRole maps any stored value onto a defined role. Backends have
// historically returned the role as a bare string, an object field, or an
// array element; anything unrecognized degrades to the plain user role.
func NormalizeRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleUser
	}
}

// IsAdmin reports whether the role grants access to admin routes.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// RoleAssignment maps a user id to a stored role.
type RoleAssignment struct {
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"type:varchar(255);index"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is the resolved caller: token subject plus effective role.
type Identity struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}
