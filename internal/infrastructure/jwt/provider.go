package jwtinfra

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the fields the portal reads from the bearer token issued
// by the remote API.
type Claims struct {
	UserID any    `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Inspector reads bearer-token claims without verifying the signature.
// The portal never holds the signing key; the remote API stays the
// authority and answers 401 to anything it rejects.
type Inspector struct {
	parser *jwt.Parser
}

func NewInspector() *Inspector {
	return &Inspector{parser: jwt.NewParser()}
}

// Inspect decodes tokenStr's claims.
func (i *Inspector) Inspect(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := i.parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Expiry returns the exp claim. ok is false for opaque tokens and tokens
// without an expiry.
func (i *Inspector) Expiry(tokenStr string) (exp time.Time, ok bool) {
	claims, err := i.Inspect(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
