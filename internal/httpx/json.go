package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// responseEnvelope is the one body shape every console answer uses, success or
// failure: the payload under "data", the error taxonomy under "error", and the
// server time on both. Consumers never have to guess the shape from the status
// code.
type responseEnvelope struct {
	Data  any    `json:"data,omitempty"`
	Time  string `json:"time"`
	Error any    `json:"error,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env responseEnvelope) {
	env.Time = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	// session-derived answers must never be served from a cache
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteJSON sends a success payload in the envelope.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	writeEnvelope(w, status, responseEnvelope{Data: v})
}

// WriteError sends an error body in the envelope.
func WriteError[T any](w http.ResponseWriter, status int, errBody ErrorResponse[T]) {
	writeEnvelope(w, status, responseEnvelope{Error: errBody})
}
