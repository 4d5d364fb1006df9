package session

import (
	"fmt"
	"strings"

	"github.com/gerefleet/console/internal/authz"
	"github.com/golang-jwt/jwt/v5"
)

// decodeClaims reads the token payload without verifying the signature. The
// fleet API issued the token and remains the authority on it; this side only
// needs the claims, exactly like the browser client it replaces. A token that
// fails even structural decoding is treated as absent.
func decodeClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// rolesFromClaims extracts the role set from either a "roles" or an
// "authorities" claim, first one present wins. Both a comma-delimited string
// ("ADMIN,USER") and a native list are accepted; entries are normalized.
func rolesFromClaims(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"]
	if !ok {
		raw, ok = claims["authorities"]
	}
	if !ok {
		return []string{}
	}

	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		parts = make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, fmt.Sprint(e))
			}
		}
	default:
		return []string{}
	}
	return authz.NormalizeRoles(parts)
}
