// Package authtest provides an in-process auth server for tests, in the
// spirit of net/http/httptest. It speaks the same gRPC service as the real
// backend over a bufconn listener, issues HS256 JWT access tokens with a
// controllable clock and rotates refresh tokens the way the backend does:
// a rotated token is answered with tokenAlreadyRefreshed for a short grace
// period and with refreshTokenExpired afterwards.
package authtest
