// Package authz holds the role normalization rules and route guards shared by
// every protected surface of the console.
package authz

import "strings"

// NormalizeRole maps the many spellings the backend has emitted over time onto
// one canonical form: trimmed, uppercased, without the ROLE_ prefix.
// "role_admin" and "ADMIN" are the same role.
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(r, "ROLE_")
}

// NormalizeRoles normalizes every entry and discards blanks. Applying it twice
// yields the same set.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		n := NormalizeRole(r)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// HasAnyRole reports whether at least one allowed role is held. An empty
// allowed list means the route carries no role restriction.
func HasAnyRole(userRoles, allowedRoles []string) bool {
	allowed := NormalizeRoles(allowedRoles)
	if len(allowed) == 0 {
		return true
	}
	user := NormalizeRoles(userRoles)
	for _, a := range allowed {
		for _, u := range user {
			if a == u {
				return true
			}
		}
	}
	return false
}

// HasAllRoles reports whether every required role is held.
func HasAllRoles(userRoles, requiredRoles []string) bool {
	user := NormalizeRoles(userRoles)
	held := make(map[string]struct{}, len(user))
	for _, u := range user {
		held[u] = struct{}{}
	}
	for _, r := range NormalizeRoles(requiredRoles) {
		if _, ok := held[r]; !ok {
			return false
		}
	}
	return true
}
