// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"
)

// SessionToken is a freshly minted session credential.
type SessionToken struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionUsecase mints sessions and resolves them to their marketplace state.
type SessionUsecase interface {
	// CreateSession starts an empty session and returns its bearer token.
	CreateSession(ctx context.Context) (*SessionToken, error)

	// Authenticate validates a bearer token and returns the session ID.
	Authenticate(ctx context.Context, token string) (string, error)

	// Open returns the session's marketplace, rehydrating it from storage on first use.
	Open(ctx context.Context, sessionID string) (Marketplace, error)
}
