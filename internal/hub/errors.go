package hub

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a hub error.
type Kind string

const (
	// KindNetwork covers transport failures and non-2xx responses.
	KindNetwork Kind = "network"
	// KindTaskFailed means a backend task reached a failed terminal state.
	KindTaskFailed Kind = "task_failed"
	// KindStaleCache is never surfaced; forced reloads bypass the cache.
	KindStaleCache Kind = "stale_cache"
	// KindNotFound is a 404.
	KindNotFound Kind = "not_found"
	// KindUnauthorized is a 401.
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden is a 403.
	KindForbidden Kind = "forbidden"
	// KindConflict is a 409.
	KindConflict Kind = "conflict"
)

// Error is the error type returned by every Client call.
type Error struct {
	Kind       Kind
	Message    string
	Status     int
	StatusText string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches sentinel errors by kind, so errors.Is(err, ErrNotFound) holds
// for any 404 regardless of message. Every non-2xx response also matches
// ErrNetwork.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Cause != nil {
		return false
	}
	if t.Kind == KindNetwork && e.Status != 0 {
		return true
	}
	return t.Kind == e.Kind
}

// Common hub API errors.
var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	// ErrForbidden is returned when the token lacks a permission.
	ErrForbidden = &Error{Kind: KindForbidden}
	// ErrConflict is returned when a resource already exists.
	ErrConflict = &Error{Kind: KindConflict}
	// ErrNetwork matches every transport or HTTP status failure.
	ErrNetwork = &Error{Kind: KindNetwork}
	// ErrTaskFailed matches failed backend tasks.
	ErrTaskFailed = &Error{Kind: KindTaskFailed}
)

// NetworkError wraps a transport failure.
func NetworkError(msg string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: msg, Cause: cause}
}

// TaskFailedError reports a task that ended in a failed state.
func TaskFailedError(taskHref, state, description string) *Error {
	msg := fmt.Sprintf("task %s %s", taskHref, state)
	if description != "" {
		msg += ": " + description
	}
	return &Error{Kind: KindTaskFailed, Message: msg}
}

// KindOf returns the kind of err, or "" when err is not a hub error.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return ""
}

// Describe returns the short human-readable description shown next to an
// alert title: the HTTP status and text when the error carries one, the
// plain message otherwise.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var he *Error
	if errors.As(err, &he) && he.Status != 0 {
		text := he.StatusText
		if text == "" {
			text = http.StatusText(he.Status)
		}
		return fmt.Sprintf("Error %d - %s", he.Status, text)
	}
	return err.Error()
}

// statusError builds the typed error for a non-2xx response.
func statusError(status int, body string) *Error {
	e := &Error{
		Kind:       KindNetwork,
		Status:     status,
		StatusText: http.StatusText(status),
	}
	switch status {
	case http.StatusUnauthorized:
		e.Kind = KindUnauthorized
		e.Message = "unauthorized: check your hub token"
	case http.StatusForbidden:
		e.Kind = KindForbidden
		e.Message = "forbidden: token may lack the required permission"
	case http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = "not found"
	case http.StatusConflict:
		e.Kind = KindConflict
		e.Message = "conflict: resource already exists"
	default:
		e.Message = fmt.Sprintf("hub API error %d", status)
		if body != "" {
			e.Message += ": " + body
		}
	}
	return e
}
