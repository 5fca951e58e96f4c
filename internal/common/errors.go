// Package common defines shared constants and sentinel errors used across
// the scorekeeper server layers. Callers should use errors.Is to match these
// values; lower layers wrap them with fmt.Errorf("%w: ...") to keep detail
// for the server log.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	//
	// ErrorUnauthorized covers every authentication failure (bad username,
	// bad password, bad token, rotated salt). ErrorForbidden is returned when
	// the caller is authenticated but not entitled to the resource.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")

	// ErrBadDecryption means a stored password hash could not be parsed. It is
	// an infrastructure failure, never a wrong-password outcome.
	ErrBadDecryption = errors.New("bad password hash")
)
