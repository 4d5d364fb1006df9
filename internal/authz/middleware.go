package authz

import (
	"context"
	"net/http"
	"strings"

	"github.com/gerefleet/console/internal/httpx"
	"go.uber.org/zap"
)

const (
	// LoginPath is where unauthenticated navigation is sent.
	LoginPath = "/login"
	// ForbiddenPath is where authenticated but role-insufficient navigation
	// is sent. Must stay distinct from LoginPath.
	ForbiddenPath = "/403"
)

// SessionSource yields the caller's current session state. Every guard
// decision re-reads it; nothing is cached across requests.
type SessionSource interface {
	Snapshot(ctx context.Context) (authenticated bool, roles []string)
}

type Guard struct {
	sessions SessionSource
	logger   *zap.Logger
}

func NewGuard(sessions SessionSource, logger *zap.Logger) *Guard {
	return &Guard{sessions: sessions, logger: logger}
}

// RequireSession rejects the request before the protected handler runs when
// there is no valid session.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return g.require(next, nil)
}

// RequireAnyRole additionally demands at least one of the given roles.
// Missing session and missing role are distinct outcomes: the first goes to
// the login destination, the second to the forbidden destination.
func (g *Guard) RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.require(next, roles)
	}
}

func (g *Guard) require(next http.Handler, allowed []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated, userRoles := g.sessions.Snapshot(r.Context())

		if !authenticated {
			g.logger.Debug("unauthenticated request", zap.String("path", r.URL.Path))
			g.deny(w, r, http.StatusUnauthorized, LoginPath)
			return
		}

		if len(allowed) > 0 && !HasAnyRole(userRoles, allowed) {
			g.logger.Debug("role check failed",
				zap.String("path", r.URL.Path),
				zap.Strings("required_any", allowed),
			)
			g.deny(w, r, http.StatusForbidden, ForbiddenPath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, status int, destination string) {
	if wantsHTML(r) {
		http.Redirect(w, r, destination, http.StatusSeeOther)
		return
	}
	switch status {
	case http.StatusForbidden:
		httpx.WriteError(w, status, httpx.ErrorResponse[any]{
			Code:    httpx.ErrForbidden,
			Message: "insufficient role",
		})
	default:
		httpx.WriteError(w, status, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUnauthorized,
			Message: "authentication required",
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
