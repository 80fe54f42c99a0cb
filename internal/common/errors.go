package common

import "errors"

var (
	// ErrorNotFound is returned by repositories for a missing record.
	ErrorNotFound = errors.New("not found")

	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrMalformedResponse is returned when the server reply lacks a
	// required field.
	ErrMalformedResponse = errors.New("malformed response")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrUnknownStorageBackend is returned for an unsupported storage setting.
	ErrUnknownStorageBackend = errors.New("unknown storage backend")
)
