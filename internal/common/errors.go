// Package common defines sentinel errors and small helpers shared by the
// client and server. Callers should match errors with errors.Is.
package common

import "errors"

var (
	// Static configuration errors. Fatal, never shown to the user.
	ErrConfiguration = errors.New("configuration error")
	ErrEmptyCatalog  = errors.New("empty catalog")

	// Recoverable errors, the caller re-prompts the user.
	ErrAlreadyActive    = errors.New("commitment already active")
	ErrCapacityExceeded = errors.New("visible capacity exceeded")
	ErrInvalidName      = errors.New("invalid name")

	// Local durable write failed.
	ErrPersistence = errors.New("persistence error")

	// Remote call failed (timeout, transport or decode).
	ErrTransport = errors.New("transport error")

	// repository specific errors
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")

	// service specific errors
	ErrInternal        = errors.New("internal error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")

	// token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
