package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can learn from a bearer token without
// verifying it. Tokens that are not JWTs yield ok=false.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// ParseTokenClaims decodes token as an unverified JWT. The signature is not
// checked; the result is informational only and never used to accept or
// reject a session.
func ParseTokenClaims(token string) (TokenClaims, bool) {
	if token == "" {
		return TokenClaims{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, false
	}

	var tc TokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		tc.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	return tc, true
}
