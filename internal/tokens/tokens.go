package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wanderlist/wanderlist/internal/config"
)

var (
	ErrNoSecret     = errors.New("session secret is empty")
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionClaims are carried by the session cookie. Sid points at the server-side session.
type SessionClaims struct {
	Sid string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a signed cookie value for session id sid
func GenerateSessionToken(cfg *config.Config, sid string, ttl time.Duration) (string, error) {
	if cfg.Session.Secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := SessionClaims{
		Sid: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.Session.Secret))
}

// ParseSessionToken verifies the signature and expiry and returns the session id.
func ParseSessionToken(cfg *config.Config, tokenStr string) (string, error) {
	if cfg.Session.Secret == "" {
		return "", ErrNoSecret
	}
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Session.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Sid == "" {
		return "", fmt.Errorf("%w: missing sid", ErrInvalidToken)
	}
	return claims.Sid, nil
}
