package authz

import "strings"

// Role is the closed set of actor roles known to the platform.
type Role string

// Roles accepted by the authorization resolver.
const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleParent     Role = "parent"
	RoleStudent    Role = "student"
)

// Actor is the authenticated principal performing a request. It is resolved
// once at the transport boundary and passed by value into the core.
type Actor struct {
	Role     Role
	Identity string
}

// NewActor builds an actor with a normalized role and identity. Identities
// are compared case-insensitively, so both are lower-cased up front.
func NewActor(role, identity string) Actor {
	parsed, _ := ParseRole(role)
	return Actor{
		Role:     parsed,
		Identity: strings.ToLower(strings.TrimSpace(identity)),
	}
}

// ParseRole normalizes a raw role string into a known Role. The second
// return value reports whether the input named a known role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleInstructor:
		return RoleInstructor, true
	case RoleParent:
		return RoleParent, true
	case RoleStudent:
		return RoleStudent, true
	default:
		return "", false
	}
}

// IsStaff reports whether the role bypasses linkage checks entirely.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleInstructor
}
