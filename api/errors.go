package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/gymdesk/jwt"
	"github.com/MrEthical07/gymdesk/permission"
)

var (
	// ErrNoToken is returned when a login succeeds at the HTTP level but carries no token.
	ErrNoToken = errors.New("api: login failed: no token returned")
	// ErrInvalidResponse is returned when a 2xx body is not the expected JSON shape.
	ErrInvalidResponse = errors.New("api: invalid response body")
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: %s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a non-2xx response. Message is the backend's "message" field
// when the body carried one.
type ProtocolError struct {
	Status  int
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsNetwork reports whether err is or wraps a [*NetworkError].
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr.Status
	}
	return 0
}

// UserMessage renders err for display. Errors outside the known taxonomy fall back to
// err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := MessageFor(err); ok {
		return msg
	}
	return err.Error()
}

// MessageFor maps the transport, protocol and credential taxonomy to operator text.
func MessageFor(err error) (string, bool) {
	if errors.Is(err, permission.ErrAccessDenied) {
		return "access denied: administrator role required", true
	}
	if errors.Is(err, jwt.ErrMalformed) {
		return "invalid credential", true
	}
	if IsNetwork(err) {
		return "connection error: check your network connection", true
	}
	if errors.Is(err, ErrNoToken) {
		return "login failed: no token returned", true
	}
	if errors.Is(err, ErrInvalidResponse) {
		return "server error: unexpected response", true
	}

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		return "", false
	}
	switch protoErr.Status {
	case http.StatusBadRequest:
		return "invalid data: " + orUnknown(protoErr.Message), true
	case http.StatusUnauthorized:
		return "authentication failed: " + orUnknown(protoErr.Message), true
	case http.StatusForbidden:
		return "permission denied: " + orUnknown(protoErr.Message), true
	case http.StatusNotFound:
		return "not found", true
	case http.StatusConflict:
		return "conflict: " + orUnknown(protoErr.Message), true
	case http.StatusInternalServerError:
		return "server error, try again later", true
	default:
		return fmt.Sprintf("error %d: %s", protoErr.Status, orUnknown(protoErr.Message)), true
	}
}

func orUnknown(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}
