package auth

import (
	"errors"
	"net/http"
)

// Failure taxonomy shared by the session validator, access checks and
// the claims synchronizer. Handlers translate these into HTTP responses
// with RespondError; nothing in this package defaults to granting access.
var (
	// ErrUnauthenticated: no credential, or the signature did not verify.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrExpired: the credential is past its validity window.
	ErrExpired = errors.New("credential expired")

	// ErrMalformed: the credential is structurally invalid.
	ErrMalformed = errors.New("credential malformed")

	// ErrUnauthorized: the caller lacks the privilege for an
	// administrative operation (wrong or missing shared secret).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden: authenticated, but not entitled to this resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound: the referenced id is absent upstream.
	ErrNotFound = errors.New("not found")

	// ErrUpstream: the profile store or identity provider failed.
	ErrUpstream = errors.New("upstream failure")
)

// StatusFor maps a taxonomy error to an HTTP status code. Unknown errors
// map to 500 so unexpected failures never read as success.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrMalformed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Reason returns the machine-distinguishable reason string used in
// error response bodies.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "internal"
	}
}
