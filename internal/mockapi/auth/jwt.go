// Package auth issues and checks the bearer tokens handed out by the mock
// API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the user id in the subject and a unique token id, so a
// single token can be revoked on logout.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens with a fixed validity.
type Issuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewIssuer(secret string, validity time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), validity: validity, now: time.Now}
}

// Issue returns a signed token for userID together with its id.
func (i *Issuer) Issue(userID string) (token, tokenID string, err error) {
	now := i.now()
	tokenID = uuid.NewString()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
	})
	token, err = t.SignedString(i.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return token, tokenID, nil
}

// Parse verifies the signature and expiry of token.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
