package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call. Every failure is classified exactly once, at the HTTP boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindServer
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// User-facing messages for each failure kind
const (
	MsgSessionExpired  = "Your session has expired, please log in again"
	MsgForbidden       = "You do not have permission to perform this action"
	MsgNotFound        = "The requested resource was not found"
	MsgServerError     = "Server error, please try again later"
	MsgCannotConnect   = "Cannot connect to the server"
	MsgSomethingWrong  = "Something went wrong"
	MsgRequestTimedOut = "The server took too long to respond"
	MsgInvalidResponse = "The server returned an unexpected response"
)

// APIError is the parsed result of a failed API call
type APIError struct {
	Kind      Kind
	Status    int    // 0 when no response was received
	Message   string // server-provided message, may be empty
	Method    string
	Path      string
	RequestID string
	Err       error // transport or decode error, if any

	notified bool
	shown    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.UserMessage()
	}

	if e.Status > 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Method, e.Path, e.Status, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Method, e.Path, msg, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, msg)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Notified reports whether a notification for this failure has already been shown to the user.
// Callers that react to the error must not show it again.
func (e *APIError) Notified() bool {
	return e.notified
}

// UserMessage returns the message a user should see for this failure
func (e *APIError) UserMessage() string {
	if e.shown != "" {
		return e.shown
	}
	return userMessage(e.Kind, e.Message)
}

// userMessage maps a kind to its notification text. Only validation and unknown failures
// show the server's own message.
func userMessage(kind Kind, serverMsg string) string {
	switch kind {
	case KindAuth:
		return MsgSessionExpired
	case KindForbidden:
		return MsgForbidden
	case KindNotFound:
		return MsgNotFound
	case KindServer:
		return MsgServerError
	case KindNetwork:
		return MsgCannotConnect
	default:
		if serverMsg != "" {
			return serverMsg
		}
		return MsgSomethingWrong
	}
}

// kindForStatus classifies an HTTP status code
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// IsKind reports whether err is an APIError of the given kind
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// AsAPIError extracts the APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
