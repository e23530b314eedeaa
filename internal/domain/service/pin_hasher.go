// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PINHasher defines the interface for PIN hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PINHasher interface {
	// Hash generates a salted hash from a plaintext PIN.
	Hash(pin string) (string, error)

	// Check compares a plaintext PIN with a hash to see if they match.
	Check(pin, hash string) bool
}
