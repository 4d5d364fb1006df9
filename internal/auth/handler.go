package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/gerefleet/console/internal/httpx"
	"github.com/gerefleet/console/internal/session"
	"github.com/gerefleet/console/internal/upstream"
	"go.uber.org/zap"
)

type AuthenticationHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

// RateLimit caps how often login may be attempted per client.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

type authenticationHandler struct {
	logger    *zap.Logger
	sessions  session.Service
	validator *validator.Validate
	rate      RateLimit
}

func NewAuthenticationHandler(sessions session.Service, rate RateLimit, l *zap.Logger) AuthenticationHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &authenticationHandler{
		logger:    l,
		sessions:  sessions,
		validator: v,
		rate:      rate,
	}
}

func (a *authenticationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(httprate.LimitByIP(a.rate.Requests, a.rate.Window)).Post("/login", a.Login)
	r.Post("/logout", a.Logout)
	r.Get("/me", a.Me)
	return r
}

func (a *authenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	/** common checks for all endpoints **/
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return
	}

	/** unmarshal & validate here */
	var req loginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		a.logger.Warn("failed to decode login request body", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInvalidJSON,
			Message: "invalid request body",
		})
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF { // check if there's any trailing data
		a.logger.Warn("trailing data after JSON body", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInvalidJSON,
			Message: "request body must contain a single JSON object",
		})
		return
	}

	if err := a.validator.Struct(req); err != nil {
		a.logger.Warn("login validation failed", zap.Error(err))
		fields := httpx.ValidationDetails(err)
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrValidationFailed,
			Message: "validation failed",
			Details: fields,
		})
		return
	}

	/** Business logic */
	sess, err := a.sessions.Login(ctx, req.RPE, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			a.logger.Debug("rejected credentials", zap.String("rpe", req.RPE))
			httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUnauthorized,
				Message: "invalid credentials",
			})
		case errors.Is(err, upstream.ErrUnreachable):
			a.logger.Error("fleet api unreachable during login", zap.Error(err))
			httpx.WriteError(w, http.StatusBadGateway, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUpstreamUnreachable,
				Message: "cannot reach the fleet server",
			})
		default:
			a.logger.Error("login failed", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInternal,
				Message: "internal server error",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Name:  sess.Name,
		RPE:   sess.RPE,
		Roles: sess.Roles,
	})
}

func (a *authenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Logout(r.Context()); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logoutResponse{LoggedOut: true})
}

// Me reports the current session so the shell can greet the user and decide
// which admin entries to show. Always 200: an anonymous result is a valid
// answer, not an error.
func (a *authenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := a.sessions.ReadSession(r.Context())
	httpx.WriteJSON(w, http.StatusOK, sess)
}

type loginRequest struct {
	RPE      string `json:"rpe"      validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

type loginResponse struct {
	Name  string   `json:"name"`
	RPE   string   `json:"rpe"`
	Roles []string `json:"roles"`
}

type logoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}
