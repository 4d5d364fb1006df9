package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// ReadJSON decodes a single JSON object body into v. On failure it writes the
// error response itself and returns false.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		WriteError(w, http.StatusUnsupportedMediaType, ErrorResponse[any]{
			Code:    ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "invalid request body",
		})
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF { // trailing data check
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "request body must contain a single JSON object",
		})
		return false
	}
	return true
}

// WriteValidation writes the field-level validation failure response.
func WriteValidation(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusUnprocessableEntity, ErrorResponse[[]FieldError]{
		Code:    ErrValidationFailed,
		Message: "validation failed",
		Details: ValidationDetails(err),
	})
}
