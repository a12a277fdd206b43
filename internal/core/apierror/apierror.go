// Package apierror classifies failures of calls against the REST backend so
// callers can tell an expired session from a dead network, a rejected request
// or a broken server.
package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Kind is the category of a failure.
type Kind string

const (
	// KindAuth means the server still answered 401 after the one refresh attempt.
	KindAuth Kind = "auth"
	// KindConnectivity covers timeouts, DNS and socket failures.
	KindConnectivity Kind = "connectivity"
	// KindValidation covers 4xx responses other than 401.
	KindValidation Kind = "validation"
	// KindServer covers 5xx responses.
	KindServer Kind = "server"
	// KindStorage covers local session persistence failures.
	KindStorage Kind = "storage"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrAuth         = &Error{Kind: KindAuth, Message: "authentication required"}
	ErrConnectivity = &Error{Kind: KindConnectivity, Message: "connectivity failure"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "request rejected"}
	ErrServer       = &Error{Kind: KindServer, Message: "server failure"}
	ErrStorage      = &Error{Kind: KindStorage, Message: "storage failure"}
)

// Error is a classified failure with a human readable message.
type Error struct {
	// Kind is the failure category.
	Kind Kind
	// Status is the HTTP status when the failure came from a response, else 0.
	Status int
	// Message is shown to the user; for validation errors it is the server's text.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so errors.Is(err, ErrValidation) works for any validation error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the user-facing message of a classified error, or err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Connectivity wraps a transport-level failure.
func Connectivity(err error) *Error {
	msg := "network unavailable"
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		msg = "request timed out"
	}
	return &Error{Kind: KindConnectivity, Message: msg, Err: err}
}

// Storage wraps a session persistence failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// Validation builds a validation error carrying msg verbatim.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: msg}
}

// FromResponse classifies a non-2xx response. The server's message is kept verbatim.
func FromResponse(status int, body []byte) *Error {
	msg := serverMessage(body)
	switch {
	case status == http.StatusUnauthorized:
		if msg == "" {
			msg = "session expired"
		}
		return &Error{Kind: KindAuth, Status: status, Message: msg}
	case status >= 400 && status < 500:
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &Error{Kind: KindValidation, Status: status, Message: msg}
	default:
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", status)
		}
		return &Error{Kind: KindServer, Status: status, Message: msg}
	}
}

// maxPlainMessage caps non-JSON bodies (proxy HTML pages and the like).
const maxPlainMessage = 256

// serverMessage extracts "message" or "error" from a JSON body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > maxPlainMessage {
			cut := maxPlainMessage
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		return text
	}
	if payload.Message != "" {
		return payload.Message
	}
	var s string
	if err := json.Unmarshal(payload.Error, &s); err == nil {
		return s
	}
	return ""
}
