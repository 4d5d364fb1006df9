package httpx

import (
	"errors"
	"net/http"

	"github.com/gerefleet/console/internal/upstream"
)

type conflictDetail struct {
	Field string `json:"field,omitempty"`
}

// WriteUpstreamError converts a fleet-api error into the console's envelope.
// One mapping for every call site so the same failure always reads the same.
func WriteUpstreamError(w http.ResponseWriter, err error) {
	var conflict *upstream.ConflictError
	var status *upstream.StatusError

	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, ErrorResponse[any]{
			Code:    ErrAuthExpired,
			Message: "session expired or lacking permission",
		})
	case errors.Is(err, upstream.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrorResponse[any]{
			Code:    ErrNotFound,
			Message: "record not found",
		})
	case errors.As(err, &conflict):
		msg := conflict.Message
		if msg == "" {
			msg = "a record with that value already exists"
		}
		WriteError(w, http.StatusConflict, ErrorResponse[conflictDetail]{
			Code:    ErrConflict,
			Message: msg,
			Details: conflictDetail{Field: conflict.Field},
		})
	case errors.Is(err, upstream.ErrUnreachable):
		WriteError(w, http.StatusBadGateway, ErrorResponse[any]{
			Code:    ErrUpstreamUnreachable,
			Message: "cannot reach the fleet server",
		})
	case errors.As(err, &status):
		WriteError(w, http.StatusBadGateway, ErrorResponse[any]{
			Code:    ErrInternal,
			Message: "fleet server error",
		})
	default:
		WriteError(w, http.StatusInternalServerError, ErrorResponse[any]{
			Code:    ErrInternal,
			Message: "internal server error",
		})
	}
}
