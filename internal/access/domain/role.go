// Package domain holds the role model and the routing guard for the access
// bounded context. Everything here is pure and free of I/O.
package domain

import "slices"

// Role is one of the fixed portal roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner"
)

// precedence orders roles when more than one could satisfy a redirect.
var precedence = []Role{RoleAdmin, RolePartner}

// AllRoles returns the known roles in precedence order.
func AllRoles() []Role {
	return slices.Clone(precedence)
}

// ParseRole returns the Role for s if it is a known role.
func ParseRole(s string) (Role, bool) {
	for _, r := range precedence {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ParseRoles keeps the known roles from raw, deduplicated and in precedence
// order.
func ParseRoles(raw []string) []Role {
	out := make([]Role, 0, len(raw))
	for _, r := range precedence {
		if slices.Contains(raw, string(r)) {
			out = append(out, r)
		}
	}
	return out
}

// Strings converts roles back to plain strings for transport.
func Strings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// HasRole reports membership. Authorization always goes through membership,
// never through the active role.
func HasRole(roles []Role, role Role) bool {
	return slices.Contains(roles, role)
}

// ResolveActiveRole picks the dashboard role for a user.
//
// Exactly one role resolves to that role. No roles resolve to partner. With
// two or more roles the stored preference wins when the user still holds it;
// otherwise the result is nil and the user must choose.
func ResolveActiveRole(roles []Role, stored *Role) *Role {
	switch len(roles) {
	case 0:
		r := RolePartner
		return &r
	case 1:
		r := roles[0]
		return &r
	}
	if stored != nil && HasRole(roles, *stored) {
		r := *stored
		return &r
	}
	return nil
}

// PreferredHome returns the highest-precedence role the user holds.
func PreferredHome(roles []Role) (Role, bool) {
	for _, r := range precedence {
		if HasRole(roles, r) {
			return r, true
		}
	}
	return "", false
}
