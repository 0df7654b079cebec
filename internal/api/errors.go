package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure so callers can branch without string
// matching: transport problems retry, auth problems invalidate the session,
// validation problems never reach the network.
type Kind int

const (
	KindNetwork Kind = iota
	KindHTTP
	KindAuth
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error carries the classification, the HTTP status when one was received,
// and the server's message when the payload had one.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error (status %d)", e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

func httpError(status int, message string) *Error {
	kind := KindHTTP
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuth
	}
	return &Error{Kind: kind, Status: status, Message: message}
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// IsAuth reports whether err is a 401/403 failure. The host should
// invalidate the session rather than retry.
func IsAuth(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// IsNetwork reports whether err is a transport failure (offline, DNS,
// timeout) rather than a server response.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}

// IsValidation reports whether err was caught before any network call.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}

// Message extracts the server-provided message from err, or returns the
// fallback when none was carried.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
