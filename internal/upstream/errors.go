package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized covers 401 and 403 from the fleet API: the stored
	// session is no longer good enough, whatever the reason.
	ErrUnauthorized = errors.New("fleet api rejected the session")
	ErrNotFound     = errors.New("record not found")
	// ErrUnreachable marks transport failures, distinguished from
	// credential failures for the user-facing message.
	ErrUnreachable = errors.New("fleet api unreachable")
)

// ConflictError is a 409 on a unique field (serial number, economic number,
// badge or RPE). Field is empty when the server did not say which one.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("duplicate %s: %s", e.Field, e.Message)
	}
	return "conflict: " + e.Message
}

// StatusError is the catch-all for any other non-2xx answer.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fleet api returned %d: %s", e.StatusCode, e.Message)
}
