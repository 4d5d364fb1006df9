// Package user is the admin-only account management surface, keyed by RPE.
package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gerefleet/console/internal/authz"
	"github.com/gerefleet/console/internal/httpx"
	"github.com/gerefleet/console/internal/search"
	"github.com/gerefleet/console/internal/session"
	"github.com/gerefleet/console/internal/upstream"
	"go.uber.org/zap"
)

type UserHandler interface {
	Routes() chi.Router
}

type userHandler struct {
	logger    *zap.Logger
	fleet     *upstream.Client
	sessions  session.Service
	guard     *authz.Guard
	validator *validator.Validate
	searcher  *search.Debouncer[[]upstream.User]
}

func NewUserHandler(
	fleet *upstream.Client,
	sessions session.Service,
	guard *authz.Guard,
	searcher *search.Debouncer[[]upstream.User],
	l *zap.Logger,
) UserHandler {
	return &userHandler{
		logger:    l,
		fleet:     fleet,
		sessions:  sessions,
		guard:     guard,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		searcher:  searcher,
	}
}

func (h *userHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.guard.RequireAnyRole("ADMIN"))

	r.Post("/", h.Create)
	r.Delete("/{rpe}", h.Delete)
	r.Get("/search", h.Search)

	return r
}

func (h *userHandler) token(r *http.Request) string {
	return h.sessions.ReadSession(r.Context()).Token
}

func (h *userHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	req.RPE = strings.ToUpper(strings.TrimSpace(req.RPE))

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("user creation validation failed", zap.Error(err))
		httpx.WriteValidation(w, err)
		return
	}

	err := h.fleet.CreateUser(r.Context(), h.token(r), upstream.UserRequest{
		RPE:      req.RPE,
		Name:     strings.TrimSpace(req.Name),
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		h.logger.Warn("user creation rejected", zap.String("rpe", req.RPE), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, struct {
		RPE string `json:"rpe"`
	}{RPE: req.RPE})
}

func (h *userHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rpe := chi.URLParam(r, "rpe")
	if err := h.fleet.DeleteUser(r.Context(), h.token(r), rpe); err != nil {
		h.logger.Warn("user deletion rejected", zap.String("rpe", rpe), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deleteResponse{RPE: rpe, Deleted: true})
}

// Search serves the RPE autosuggest box, debounced with last-request-wins
// semantics.
func (h *userHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		httpx.WriteJSON(w, http.StatusOK, searchResponse{Users: []upstream.User{}})
		return
	}

	token := h.token(r)
	users, err := h.searcher.Do(r.Context(), "user:"+token, func(ctx context.Context) ([]upstream.User, error) {
		return h.fleet.SearchUsers(ctx, token, query, 0, 10)
	})
	if err != nil {
		if errors.Is(err, search.ErrSuperseded) || errors.Is(err, context.Canceled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, searchResponse{Users: users})
}

type createUserRequest struct {
	RPE      string `json:"rpe"      validate:"required,alphanum,min=3,max=32"`
	Name     string `json:"name"     validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	RoleID   int64  `json:"roleId"   validate:"required"`
}

type deleteResponse struct {
	RPE     string `json:"rpe"`
	Deleted bool   `json:"deleted"`
}

type searchResponse struct {
	Users []upstream.User `json:"users"`
}
