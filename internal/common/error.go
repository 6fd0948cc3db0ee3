// Package common defines shared constants and sentinel errors used across
// the server, the admin CLI and their tests. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorForbidden  = errors.New("forbidden")
	ErrorValidation = errors.New("validation error")

	// Session errors. ErrInvalidSignature and ErrMalformedToken are returned
	// by the token codec and both wrap ErrInvalidToken.
	ErrMissingToken     = errors.New("missing token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrMalformedToken   = fmt.Errorf("%w: malformed payload", ErrInvalidToken)
	ErrTokenExpired     = errors.New("token expired")

	// Credential errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

var authFailures = []error{
	ErrMissingToken,
	ErrInvalidToken,
	ErrTokenExpired,
	ErrInvalidCredentials,
}

// IsAuthFailure reports whether err is one of the authentication failure
// kinds that map to 401 at the transport boundary.
func IsAuthFailure(err error) bool {
	for _, target := range authFailures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
