// Package common contains constants and sentinel errors shared by the
// gophsession client layers.
package common

// Outbound gRPC metadata keys.
const (
	AccessTokenHeaderName  = "access_token"
	RefreshTokenHeaderName = "refresh_token"
	RequestIDHeaderName    = "x-request-id"
)

// SetRefreshTokenHeaderName is the response header the server uses to hand
// out a rotated refresh token. It plays the role of a Set-Cookie header.
const SetRefreshTokenHeaderName = "set-refresh-token"

// AuthServiceName is the fully-qualified gRPC auth service.
const AuthServiceName = "gophsession.v1.AuthService"
