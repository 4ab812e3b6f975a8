// Package auth validates the two credentials the gateway proxy accepts from
// end users: a signed session JWT, and — failing that — an identity-layer
// session cookie looked up against the database.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

// Config carries the JWT verification secret and the bound expiration this
// core enforces on tokens it issues itself (e.g. for bootstrap/testing).
// Tokens issued by an external identity layer still have their `exp` claim
// checked on verification; the source left expiration checking disabled,
// which this core does not repeat.
type Config struct {
	Secret     string
	DefaultTTL time.Duration
}

// Claims is the session JWT shape. The only claim the core relies on is
// sub, the authenticated user's id.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the sub claim, which is the user id.
func (c Claims) UserID() string {
	return c.Subject
}

// GenerateToken issues a session JWT for userID, bounded by cfg.DefaultTTL.
func GenerateToken(cfg Config, userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.DefaultTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and standard claims (including
// expiration) and returns the decoded claims.
func ValidateToken(cfg Config, tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
