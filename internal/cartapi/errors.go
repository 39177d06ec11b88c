package cartapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is the uniform failure shape returned by every Client operation.
// Status is the HTTP status code, or 0 when no response was received.
type Error struct {
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Success always reports false; it mirrors the {success:false} failure body.
func (e *Error) Success() bool { return false }

// IsNetwork reports whether the request failed before any response arrived
// (connection errors, timeouts, cancellation).
func (e *Error) IsNetwork() bool { return e.Status == 0 }

// newError picks the message in order: server message, fallback, raw error text.
func newError(op, fallback string, status int, body []byte, cause error) *Error {
	msg := serverMessage(body)
	if msg == "" {
		msg = fallback
	}
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{Op: op, Message: msg, Status: status, Err: cause}
}

func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if m := strings.TrimSpace(payload.Message); m != "" {
		return m
	}
	return strings.TrimSpace(payload.Error)
}
