// Package jwt firma y valida los tokens HS256 que identifican usuario, tenant y rol.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret  = errors.New("jwt: empty secret")
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// Identity sujeto autenticado de una petición.
type Identity struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

type claims struct {
	jwt.RegisteredClaims
	Identity
}

// Sign firma id con vigencia ttl a partir de ahora.
func Sign(secret string, id Identity, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Identity: id,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// Verify comprueba firma, algoritmo y expiración y devuelve la identidad del token.
func Verify(secret, token string) (Identity, error) {
	if secret == "" {
		return Identity{}, ErrEmptySecret
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return c.Identity, nil
}
