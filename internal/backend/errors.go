package backend

import (
	"errors"
	"fmt"
)

// AuthErrorKind classifies a rejected login.
type AuthErrorKind string

// Login rejection kinds.
const (
	InvalidCredentials AuthErrorKind = "invalid credentials"
	InvalidAPIKey      AuthErrorKind = "invalid API key"
	UserNotFound       AuthErrorKind = "user not found"
)

// AuthError is returned by Login when the backend rejects the handshake.
type AuthError struct {
	Kind     AuthErrorKind
	Username string
	Detail   string
}

func (e *AuthError) Error() string {
	msg := string(e.Kind)
	if e.Kind == UserNotFound && e.Username != "" {
		msg = fmt.Sprintf("user %s not found", e.Username)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// APIErrorKind classifies a failed API call.
type APIErrorKind string

// API error kinds.
const (
	NotFound        APIErrorKind = "not found"
	Conflict        APIErrorKind = "conflict"
	ValidationError APIErrorKind = "validation error"
	Unauthorized    APIErrorKind = "unauthorized"
	Unexpected      APIErrorKind = "unexpected response"
)

// APIError is a non-success response from the backend.
type APIError struct {
	Kind    APIErrorKind
	Status  int
	Field   string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
}

// ConnectivityError wraps transport failures: refused connections, DNS
// errors, timeouts.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err is a transport failure.
func IsConnectivity(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

// IsAuth reports whether err is a rejected login.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsAPIErrorKind reports whether err is an APIError of one of the given kinds.
func IsAPIErrorKind(err error, kinds ...APIErrorKind) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, k := range kinds {
		if apiErr.Kind == k {
			return true
		}
	}
	return false
}
