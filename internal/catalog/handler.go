// Package catalog passes the fleet API's lookup catalogs through to the
// console forms. Nothing is cached: every dropdown re-fetches on mount.
package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gerefleet/console/internal/authz"
	"github.com/gerefleet/console/internal/httpx"
	"github.com/gerefleet/console/internal/session"
	"github.com/gerefleet/console/internal/upstream"
	"go.uber.org/zap"
)

type CatalogHandler interface {
	Routes() chi.Router
}

type catalogHandler struct {
	logger   *zap.Logger
	fleet    *upstream.Client
	sessions session.Service
	guard    *authz.Guard
}

func NewCatalogHandler(fleet *upstream.Client, sessions session.Service, guard *authz.Guard, l *zap.Logger) CatalogHandler {
	return &catalogHandler{
		logger:   l,
		fleet:    fleet,
		sessions: sessions,
		guard:    guard,
	}
}

func (h *catalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.guard.RequireSession)

	r.Get("/work-centers", passthrough(h, h.fleet.WorkCenters))
	r.Get("/processes", passthrough(h, h.fleet.Processes))
	r.Get("/fail-types", passthrough(h, h.fleet.FailTypes))
	r.Get("/fail-types/device", passthrough(h, h.fleet.DeviceFailTypes))

	// role catalog feeds the admin-only user form
	r.With(h.guard.RequireAnyRole("ADMIN")).Get("/roles", passthrough(h, h.fleet.Roles))

	return r
}

func passthrough[T any](h *catalogHandler, fetch func(ctx context.Context, token string) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := h.sessions.ReadSession(r.Context()).Token
		items, err := fetch(r.Context(), token)
		if err != nil {
			h.logger.Warn("catalog fetch failed", zap.String("path", r.URL.Path), zap.Error(err))
			httpx.WriteUpstreamError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, items)
	}
}
