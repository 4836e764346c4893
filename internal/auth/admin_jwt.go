// Package auth mints and validates the admin JWT issued by POST
// /auth/login, replacing the teacher's multi-tenant AAA token validator
// with the single-role admin session this domain needs.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AdminClaims identifies the admin session; there is exactly one role.
type AdminClaims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// AdminAuthenticator mints and validates admin JWTs with a shared HMAC
// secret, matching the teacher's HMAC branch of token_validator.go without
// the RSA/multi-audience machinery this single-tenant service doesn't need.
type AdminAuthenticator struct {
	secret []byte
	expiry time.Duration
}

func NewAdminAuthenticator(secret string, expiry time.Duration) *AdminAuthenticator {
	return &AdminAuthenticator{secret: []byte(secret), expiry: expiry}
}

// IssueToken mints a signed JWT for an authenticated admin.
func (a *AdminAuthenticator) IssueToken(adminID, email string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(a.expiry)
	claims := AdminClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "greengate-screening",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (a *AdminAuthenticator) ValidateToken(tokenString string) (*AdminClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is required")
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
