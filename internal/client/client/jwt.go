package client

import (
	"github.com/golang-jwt/jwt/v5"
)

// expiryFromJWT reads the exp claim of a JWT access token without verifying
// it. Non-JWT tokens and tokens without exp yield 0.
func expiryFromJWT(token string) int64 {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Unix()
}
