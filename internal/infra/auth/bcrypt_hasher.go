// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"farmlink/config"
	"farmlink/internal/domain/service"
)

// bcryptHasher is a concrete implementation of the PINHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PINHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PINHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return NewBcryptHasherWithCost(cost)
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost, clamped to bcrypt's bounds.
func NewBcryptHasherWithCost(cost int) service.PINHasher {
	cost = max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))

	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext PIN using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)

	return string(bytes), err
}

// Check compares a plaintext PIN with a bcrypt hash.
func (h *bcryptHasher) Check(pin, hash string) bool {
	// err is nil if the PIN and hash match.
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
