package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeSession marks tokens that identify a client session.
const TokenTypeSession = "session"

// Claims defines the custom claims for session tokens.
type Claims struct {
	SessionID string `json:"sid"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateSessionToken signs a token bound to the given session.
	GenerateSessionToken(sessionID string) (token string, expiresAt time.Time, err error)

	// ValidateToken checks the validity of a token string.
	ValidateToken(tokenString string) (*Claims, error)
}
