package sharing

import (
	"strings"

	"github.com/firecash/backend/internal/domain/shared"
)

// Role is the access level a user holds on a group, and transitively on the
// accounts linked to it. Levels are strictly ordered.
type Role int

const (
	RoleNone Role = iota
	RoleView
	RoleEdit
	RoleAdmin
)

// ParseRole normalizes a raw role string. Only view, edit, and admin are
// accepted on the wire; RoleNone is the absence of a grant, never stored.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "view":
		return RoleView, nil
	case "edit":
		return RoleEdit, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleNone, shared.NewDomainError("INVALID_INPUT", "Role must be view, edit, or admin")
	}
}

// String returns the wire representation of the role
func (r Role) String() string {
	switch r {
	case RoleView:
		return "view"
	case RoleEdit:
		return "edit"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// AtLeast reports whether this role grants everything min grants
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Max returns the stronger of two roles
func Max(a, b Role) Role {
	if a >= b {
		return a
	}
	return b
}
